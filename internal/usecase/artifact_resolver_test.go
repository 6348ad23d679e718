package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
	"github.com/mansidw/aakar-cli/internal/domain/mocks"
)

func TestArtifactResolver_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		result entity.Result
		want   entity.Artifact
	}{
		{
			name:   "text passes through",
			result: entity.TextResult{Content: "Sales up 10%"},
			want:   entity.TextArtifact{Content: "Sales up 10%"},
		},
		{
			name:   "benign html is kept",
			result: entity.HTMLResult{Content: "<p>Sales up 10%</p>"},
			want:   entity.HTMLArtifact{Content: "<p>Sales up 10%</p>"},
		},
		{
			name:   "script is stripped",
			result: entity.HTMLResult{Content: `<p>hi</p><script>alert(1)</script>`},
			want:   entity.HTMLArtifact{Content: "<p>hi</p>"},
		},
		{
			name:   "markdown passes through",
			result: entity.MarkdownResult{Content: "# Q1\n\n<script>kept as source</script>"},
			want:   entity.MarkdownArtifact{Content: "# Q1\n\n<script>kept as source</script>"},
		},
		{
			name:   "error keeps code and message",
			result: entity.ErrorResult{Code: entity.CodeUnclassified, Message: domain.MessageUnclassified},
			want:   entity.ErrorArtifact{Code: entity.CodeUnclassified, Message: domain.MessageUnclassified},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := &mocks.MockResourceAllocator{}
			r := NewArtifactResolver(alloc, testLogger)

			require.Equal(t, tt.want, r.Resolve(context.Background(), tt.result))
			require.Empty(t, alloc.Allocated())
		})
	}
}

func TestArtifactResolver_SanitizesUnsafeMarkup(t *testing.T) {
	r := NewArtifactResolver(&mocks.MockResourceAllocator{}, testLogger)

	inputs := []string{
		`<a href="https://example.com" onclick="steal()">report</a>`,
		`<a href="javascript:alert(1)">report</a>`,
		`<img src="x.png" onerror="alert(1)"><b>report</b>`,
		`<iframe src="https://evil.example"></iframe><em>report</em>`,
		`<style>body{display:none}</style><p>report</p>`,
	}

	for _, in := range inputs {
		art := r.Resolve(context.Background(), entity.HTMLResult{Content: in})
		html, ok := art.(entity.HTMLArtifact)
		require.True(t, ok)
		require.Contains(t, html.Content, "report")
		for _, unsafe := range []string{"onclick", "javascript:", "onerror", "<iframe", "<style", "display:none"} {
			require.NotContains(t, html.Content, unsafe, "input %q", in)
		}
	}
}

func TestArtifactResolver_ResolveDocument(t *testing.T) {
	alloc := &mocks.MockResourceAllocator{}
	r := NewArtifactResolver(alloc, testLogger)

	result := entity.DocumentResult{
		DocumentKind: entity.DocumentPDF,
		ContentType:  "application/pdf",
		FileName:     "q1.pdf",
		Data:         []byte("%PDF-1.7 payload"),
	}
	original := append([]byte(nil), result.Data...)

	art := r.Resolve(context.Background(), result)

	doc, ok := art.(entity.DocumentArtifact)
	require.True(t, ok, "expected DocumentArtifact, got %T", art)
	require.Equal(t, entity.DocumentPDF, doc.DocumentKind)
	require.Equal(t, "q1.pdf", doc.FileName)
	require.Equal(t, "application/pdf", doc.ContentType)
	require.Equal(t, len(original), doc.Size)
	require.NotEmpty(t, doc.Handle)
	require.Equal(t, []entity.ResourceHandle{doc.Handle}, alloc.Allocated())
	require.Equal(t, original, result.Data)

	handle, owned := entity.OwnedResource(art)
	require.True(t, owned)
	require.Equal(t, doc.Handle, handle)
	require.Zero(t, alloc.ReleaseCount(doc.Handle), "resolver must not release")
}

func TestArtifactResolver_AllocationFailure(t *testing.T) {
	alloc := &mocks.MockResourceAllocator{
		AllocateFunc: func(ctx context.Context, blob entity.Blob) (entity.ResourceHandle, error) {
			return "", errors.New("disk full")
		},
	}
	r := NewArtifactResolver(alloc, testLogger)

	art := r.Resolve(context.Background(), entity.DocumentResult{DocumentKind: entity.DocumentDOCX, FileName: "r.docx"})

	require.Equal(t, entity.ErrorArtifact{Code: entity.CodeInternal, Message: domain.MessageUnavailable}, art)
}
