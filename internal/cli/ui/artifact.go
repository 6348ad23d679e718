package ui

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

const renderCacheSize = 512

// ArtifactRenderer turns artifacts into terminal text. Rendered messages are
// cached by message id and width; messages are immutable so entries never
// go stale.
type ArtifactRenderer struct {
	markdown MarkdownRenderer
	cache    *lru.Cache[string, string]
}

// NewArtifactRenderer creates a renderer. A nil markdown renderer falls back
// to the glamour "dark" style.
func NewArtifactRenderer(markdown MarkdownRenderer) *ArtifactRenderer {
	if markdown == nil {
		markdown = NewGlamourRenderer("dark")
	}
	// lru.New only errors on a non-positive size
	cache, _ := lru.New[string, string](renderCacheSize)
	return &ArtifactRenderer{markdown: markdown, cache: cache}
}

// Render renders a stored message, using the cache
func (r *ArtifactRenderer) Render(msg entity.Message, width int) string {
	key := fmt.Sprintf("%d:%d", msg.ID, width)
	if out, ok := r.cache.Get(key); ok {
		return out
	}
	out := r.RenderArtifact(msg.Artifact, width)
	r.cache.Add(key, out)
	return out
}

// RenderArtifact renders a single artifact without caching
func (r *ArtifactRenderer) RenderArtifact(a entity.Artifact, width int) string {
	switch art := a.(type) {
	case entity.TextArtifact:
		return Wrap(art.Content, width)
	case entity.MarkdownArtifact:
		return r.renderMarkdown(art.Content, width)
	case entity.HTMLArtifact:
		md, err := HTMLToMarkdown(art.Content)
		if err != nil {
			return Wrap(art.Content, width)
		}
		return r.renderMarkdown(md, width)
	case entity.DocumentArtifact:
		return RenderDocumentCard(art, width)
	case entity.ErrorArtifact:
		return Styles.ErrorText.Render(Wrap("✗ "+art.Message, width))
	default:
		return ""
	}
}

func (r *ArtifactRenderer) renderMarkdown(md string, width int) string {
	out, err := r.markdown.Render(md, width)
	if err != nil {
		return Wrap(md, width)
	}
	return out
}

// RenderDocumentCard renders a binary report as a framed card with its link
func RenderDocumentCard(doc entity.DocumentArtifact, width int) string {
	name := doc.FileName
	if name == "" {
		name = "report." + string(doc.DocumentKind)
	}

	lines := []string{
		Styles.Accent.Render("📄 " + name),
		Styles.Muted.Render(fmt.Sprintf("%s · %s", strings.ToUpper(string(doc.DocumentKind)), FormatSize(doc.Size))),
	}
	if doc.Handle != "" {
		lines = append(lines, Styles.Value.Render(string(doc.Handle)))
	}

	style := Styles.Document
	if width > 4 {
		style = style.MaxWidth(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// FormatSize formats a byte count for display
func FormatSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
