package entity

// ErrorCode classifies failures surfaced to the conversation
type ErrorCode string

const (
	CodeValidation      ErrorCode = "VALIDATION"
	CodeTransport       ErrorCode = "TRANSPORT"
	CodeUnclassified    ErrorCode = "UNCLASSIFIED"
	CodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	CodeSessionBusy     ErrorCode = "SESSION_BUSY"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidInput    ErrorCode = "INVALID_INPUT"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// DocumentKind is the kind of a binary report
type DocumentKind string

const (
	DocumentPDF  DocumentKind = "pdf"
	DocumentDOCX DocumentKind = "docx"
)

// ResultKind tags a Result variant
type ResultKind string

const (
	ResultText     ResultKind = "text"
	ResultHTML     ResultKind = "html"
	ResultMarkdown ResultKind = "markdown"
	ResultPDF      ResultKind = "pdf"
	ResultDOCX     ResultKind = "docx"
	ResultError    ResultKind = "error"
)

// Result is the classified outcome of one report request. The concrete
// variants are TextResult, HTMLResult, MarkdownResult, DocumentResult and
// ErrorResult; the unexported marker keeps the set closed to this package.
type Result interface {
	Kind() ResultKind
	isResult()
}

// TextResult carries a plain-text report (extracted from a JSON body)
type TextResult struct {
	Content string
}

// HTMLResult carries an unsanitized HTML report as received
type HTMLResult struct {
	Content string
}

// MarkdownResult carries a Markdown report
type MarkdownResult struct {
	Content string
}

// DocumentResult carries a binary report payload
type DocumentResult struct {
	DocumentKind DocumentKind
	ContentType  string
	FileName     string
	Data         []byte
}

// ErrorResult is a failure that will be shown in the conversation
type ErrorResult struct {
	Code    ErrorCode
	Message string
}

func (TextResult) Kind() ResultKind     { return ResultText }
func (HTMLResult) Kind() ResultKind     { return ResultHTML }
func (MarkdownResult) Kind() ResultKind { return ResultMarkdown }
func (ErrorResult) Kind() ResultKind    { return ResultError }

func (r DocumentResult) Kind() ResultKind {
	if r.DocumentKind == DocumentDOCX {
		return ResultDOCX
	}
	return ResultPDF
}

func (TextResult) isResult()     {}
func (HTMLResult) isResult()     {}
func (MarkdownResult) isResult() {}
func (DocumentResult) isResult() {}
func (ErrorResult) isResult()    {}
