package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

type fakeMarkdown struct {
	calls []string
	err   error
}

func (f *fakeMarkdown) Render(markdown string, width int) (string, error) {
	f.calls = append(f.calls, markdown)
	if f.err != nil {
		return "", f.err
	}
	return "rendered:" + markdown, nil
}

func TestArtifactRenderer_RenderArtifact(t *testing.T) {
	md := &fakeMarkdown{}
	r := NewArtifactRenderer(md)

	assert.Equal(t, "plain text", r.RenderArtifact(entity.TextArtifact{Content: "plain text"}, 80))
	assert.Equal(t, "rendered:# Q1", r.RenderArtifact(entity.MarkdownArtifact{Content: "# Q1"}, 80))
	assert.Equal(t, "rendered:# Q1\n\nup", r.RenderArtifact(entity.HTMLArtifact{Content: "<h1>Q1</h1><p>up</p>"}, 80))
	assert.Contains(t, r.RenderArtifact(entity.ErrorArtifact{Code: entity.CodeTransport, Message: "boom"}, 80), "✗ boom")

	card := r.RenderArtifact(entity.DocumentArtifact{
		DocumentKind: entity.DocumentPDF,
		Handle:       "http://127.0.0.1:17321/blobs/abc",
		FileName:     "q1.pdf",
		Size:         1536,
	}, 80)
	assert.Contains(t, card, "q1.pdf")
	assert.Contains(t, card, "PDF")
	assert.Contains(t, card, "1.5 KB")
	assert.Contains(t, card, "http://127.0.0.1:17321/blobs/abc")
}

func TestArtifactRenderer_MarkdownFailureFallsBack(t *testing.T) {
	r := NewArtifactRenderer(&fakeMarkdown{err: errors.New("bad style")})

	assert.Equal(t, "# Q1", r.RenderArtifact(entity.MarkdownArtifact{Content: "# Q1"}, 80))
}

func TestArtifactRenderer_RenderCachesByMessageAndWidth(t *testing.T) {
	md := &fakeMarkdown{}
	r := NewArtifactRenderer(md)
	msg := entity.Message{ID: 7, Sender: entity.SenderAssistant, Artifact: entity.MarkdownArtifact{Content: "# Q1"}}

	first := r.Render(msg, 80)
	second := r.Render(msg, 80)
	require.Equal(t, first, second)
	require.Len(t, md.calls, 1)

	r.Render(msg, 40)
	require.Len(t, md.calls, 2)
}

func TestRenderDocumentCard_DefaultName(t *testing.T) {
	card := RenderDocumentCard(entity.DocumentArtifact{DocumentKind: entity.DocumentDOCX}, 80)
	assert.Contains(t, card, "report.docx")
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.in))
	}
}
