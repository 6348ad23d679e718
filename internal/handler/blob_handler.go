package handler

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
	pkglogger "github.com/mansidw/aakar-cli/pkg/logger"
)

// BlobSource looks up a payload by blob id
type BlobSource interface {
	Open(id string) (entity.Blob, error)
}

// BlobHandler serves allocated report payloads to viewers (browsers, PDF
// readers) that were handed a blob URL
type BlobHandler struct {
	source BlobSource
}

// NewBlobHandler creates a blob handler
func NewBlobHandler(source BlobSource) *BlobHandler {
	return &BlobHandler{source: source}
}

// Get streams the payload inline; HEAD requests get the headers only.
// Released blobs answer 404.
//
//	GET /blobs/:id
func (h *BlobHandler) Get(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	if id == "" {
		ErrorResponse(c, domain.NewInvalidInputError("blob id is required"))
		return
	}

	blob, err := h.source.Open(id)
	if err != nil {
		pkglogger.FromContext(ctx).Debug("blob not available", "blob_id", id, "error", err)
		ErrorResponse(c, err)
		return
	}

	c.Response.Header.Set("Cache-Control", "no-store")
	c.Response.Header.Set("X-Content-Type-Options", "nosniff")
	if blob.FileName != "" {
		c.Response.Header.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", blob.FileName))
	} else {
		c.Response.Header.Set("Content-Disposition", "inline")
	}

	c.Data(consts.StatusOK, blob.ContentType, blob.Data)
}
