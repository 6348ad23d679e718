package usecase

import (
	"context"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// artifactResolver implements domain.ArtifactResolver.
// HTML goes through a bluemonday UGC policy; binary payloads are handed to
// the ResourceAllocator and the resulting handle is owned by the caller.
type artifactResolver struct {
	allocator domain.ResourceAllocator
	policy    *bluemonday.Policy
	logger    *slog.Logger
}

// NewArtifactResolver creates an ArtifactResolver backed by allocator.
//
// Parameters:
//   - allocator: creates display resources for pdf/docx payloads
//   - logger: structured logger (nil uses slog.Default)
func NewArtifactResolver(allocator domain.ResourceAllocator, logger *slog.Logger) domain.ArtifactResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &artifactResolver{
		allocator: allocator,
		policy:    bluemonday.UGCPolicy(),
		logger:    logger.With("component", "artifact_resolver"),
	}
}

// Resolve converts result to an Artifact. Every Result variant is handled;
// the default branch only exists for a nil result.
func (r *artifactResolver) Resolve(ctx context.Context, result entity.Result) entity.Artifact {
	switch res := result.(type) {
	case entity.TextResult:
		return entity.TextArtifact{Content: res.Content}
	case entity.HTMLResult:
		return entity.HTMLArtifact{Content: r.policy.Sanitize(res.Content)}
	case entity.MarkdownResult:
		return entity.MarkdownArtifact{Content: res.Content}
	case entity.DocumentResult:
		return r.resolveDocument(ctx, res)
	case entity.ErrorResult:
		return entity.ErrorArtifact{Code: res.Code, Message: res.Message}
	default:
		r.logger.ErrorContext(ctx, "cannot resolve result", "result", result)
		return entity.ErrorArtifact{Code: entity.CodeInternal, Message: domain.MessageUnavailable}
	}
}

func (r *artifactResolver) resolveDocument(ctx context.Context, res entity.DocumentResult) entity.Artifact {
	handle, err := r.allocator.Allocate(ctx, entity.Blob{
		Data:        res.Data,
		ContentType: res.ContentType,
		FileName:    res.FileName,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to allocate display resource",
			"file_name", res.FileName,
			"bytes", len(res.Data),
			"error", err,
		)
		return entity.ErrorArtifact{Code: entity.CodeInternal, Message: domain.MessageUnavailable}
	}

	return entity.DocumentArtifact{
		DocumentKind: res.DocumentKind,
		Handle:       handle,
		FileName:     res.FileName,
		ContentType:  res.ContentType,
		Size:         len(res.Data),
	}
}
