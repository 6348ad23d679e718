package client

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/mansidw/aakar-cli/internal/cli/types"
	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

const (
	mimePDF      = "application/pdf"
	mimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeHTML     = "text/html"
	mimeMarkdown = "text/markdown"
	mimeJSON     = "application/json"
)

// fileNamePattern matches filename="q1.pdf" and filename=q1.pdf tokens
var fileNamePattern = regexp.MustCompile(`(?i)filename\s*=\s*"?([^";]+)"?`)

// ClassifyResponse maps a response to a Result using only its declared
// content type. The requested format plays no part: the backend may answer
// with a different one.
func ClassifyResponse(contentType, contentDisposition string, body []byte) entity.Result {
	ct := strings.ToLower(contentType)

	switch {
	case strings.Contains(ct, mimePDF):
		return entity.DocumentResult{
			DocumentKind: entity.DocumentPDF,
			ContentType:  contentType,
			FileName:     FileNameFromDisposition(contentDisposition, entity.DocumentPDF),
			Data:         body,
		}
	case strings.Contains(ct, mimeDOCX):
		return entity.DocumentResult{
			DocumentKind: entity.DocumentDOCX,
			ContentType:  contentType,
			FileName:     FileNameFromDisposition(contentDisposition, entity.DocumentDOCX),
			Data:         body,
		}
	case strings.Contains(ct, mimeHTML):
		return entity.HTMLResult{Content: string(body)}
	case strings.Contains(ct, mimeMarkdown):
		return entity.MarkdownResult{Content: string(body)}
	case strings.Contains(ct, mimeJSON):
		var parsed types.ReportJSON
		if err := sonic.Unmarshal(body, &parsed); err != nil || parsed.Report == nil {
			return domain.ToErrorResult(domain.NewTransportError(errMalformedReport))
		}
		return entity.TextResult{Content: *parsed.Report}
	default:
		return domain.ToErrorResult(domain.NewUnclassifiedError(contentType))
	}
}

// FileNameFromDisposition extracts the suggested file name from a
// Content-Disposition header, falling back to report.<kind>. Directory parts
// are dropped so the name is always safe to join with an output directory.
func FileNameFromDisposition(disposition string, kind entity.DocumentKind) string {
	if match := fileNamePattern.FindStringSubmatch(disposition); len(match) == 2 {
		name := filepath.Base(strings.TrimSpace(strings.ReplaceAll(match[1], `\`, "/")))
		if name != "" && name != "." && name != "/" && name != ".." {
			return name
		}
	}
	return "report." + string(kind)
}
