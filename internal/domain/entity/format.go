package entity

import (
	"fmt"
	"strings"
)

// RequestFormat is the report format the user asks the backend for
type RequestFormat string

const (
	FormatPDF      RequestFormat = "PDF"
	FormatHTML     RequestFormat = "HTML"
	FormatMarkdown RequestFormat = "MARKDOWN"
	FormatDOCX     RequestFormat = "DOCX"
	FormatText     RequestFormat = "TEXT"
)

// RequestFormats lists the selectable formats in UI order
var RequestFormats = []RequestFormat{FormatPDF, FormatHTML, FormatMarkdown, FormatDOCX, FormatText}

// ParseRequestFormat parses a format name case-insensitively. "md" is accepted
// as an alias of MARKDOWN.
func ParseRequestFormat(s string) (RequestFormat, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PDF":
		return FormatPDF, nil
	case "HTML":
		return FormatHTML, nil
	case "MARKDOWN", "MD":
		return FormatMarkdown, nil
	case "DOCX":
		return FormatDOCX, nil
	case "TEXT", "TXT":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q (valid: PDF, HTML, MARKDOWN, DOCX, TEXT)", s)
	}
}

// Next returns the format after f in RequestFormats, wrapping around
func (f RequestFormat) Next() RequestFormat {
	for i, candidate := range RequestFormats {
		if candidate == f {
			return RequestFormats[(i+1)%len(RequestFormats)]
		}
	}
	return RequestFormats[0]
}
