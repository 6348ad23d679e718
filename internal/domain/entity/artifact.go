package entity

// ResourceHandle references a display resource allocated for a binary
// payload, typically a URL. The zero value means "no resource".
type ResourceHandle string

// ArtifactKind tags an Artifact variant
type ArtifactKind string

const (
	ArtifactText     ArtifactKind = "text"
	ArtifactHTML     ArtifactKind = "html"
	ArtifactMarkdown ArtifactKind = "markdown"
	ArtifactDocument ArtifactKind = "document"
	ArtifactError    ArtifactKind = "error"
)

// Artifact is the renderable payload of a Message. The variants are
// TextArtifact, HTMLArtifact, MarkdownArtifact, DocumentArtifact and
// ErrorArtifact.
type Artifact interface {
	Kind() ArtifactKind
	isArtifact()
}

// TextArtifact is rendered verbatim
type TextArtifact struct {
	Content string
}

// HTMLArtifact holds HTML that has already been sanitized and is safe to render
type HTMLArtifact struct {
	Content string
}

// MarkdownArtifact holds Markdown source
type MarkdownArtifact struct {
	Content string
}

// DocumentArtifact points at a binary report through an owned resource handle.
// The handle is released exactly once, by whoever destroys the owning Message.
type DocumentArtifact struct {
	DocumentKind DocumentKind
	Handle       ResourceHandle
	FileName     string
	ContentType  string
	Size         int
}

// ErrorArtifact is a failure rendered as a chat bubble
type ErrorArtifact struct {
	Code    ErrorCode
	Message string
}

func (TextArtifact) Kind() ArtifactKind     { return ArtifactText }
func (HTMLArtifact) Kind() ArtifactKind     { return ArtifactHTML }
func (MarkdownArtifact) Kind() ArtifactKind { return ArtifactMarkdown }
func (DocumentArtifact) Kind() ArtifactKind { return ArtifactDocument }
func (ErrorArtifact) Kind() ArtifactKind    { return ArtifactError }

func (TextArtifact) isArtifact()     {}
func (HTMLArtifact) isArtifact()     {}
func (MarkdownArtifact) isArtifact() {}
func (DocumentArtifact) isArtifact() {}
func (ErrorArtifact) isArtifact()    {}

// OwnedResource returns the resource handle held by a, if any
func OwnedResource(a Artifact) (ResourceHandle, bool) {
	doc, ok := a.(DocumentArtifact)
	if !ok || doc.Handle == "" {
		return "", false
	}
	return doc.Handle, true
}

// Blob is a binary payload handed to a ResourceAllocator
type Blob struct {
	Data        []byte
	ContentType string
	FileName    string
}
