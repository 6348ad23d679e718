package types

// GenerateReportRequest is the body of POST /reports/generate
type GenerateReportRequest struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Query     string `json:"query"`
	Format    string `json:"format"` // PDF, HTML, MARKDOWN, DOCX, TEXT
}

// ReportJSON is the body returned with content-type application/json.
// Report is a pointer so a missing field can be told apart from an empty report.
type ReportJSON struct {
	Report *string `json:"report"`
}

// Session is a session as listed by GET /sessions
type Session struct {
	ID        any    `json:"id"` // numeric for sessions created by the web UI
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ChatMessage is a stored message as returned by GET /session/{id}
type ChatMessage struct {
	ID       any    `json:"id"`                  // the backend emits numeric or string ids
	Sender   string `json:"sender"`              // user, ai
	Type     string `json:"type,omitempty"`      // text, html, markdown, pdf, docx, error
	Content  string `json:"content,omitempty"`   // message content
	FileName string `json:"fileName,omitempty"` // binary reports only
}
