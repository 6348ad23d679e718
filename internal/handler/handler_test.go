package handler

import (
	"context"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/require"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// mapSource is a BlobSource over a fixed map
type mapSource map[string]entity.Blob

func (m mapSource) Open(id string) (entity.Blob, error) {
	if b, ok := m[id]; ok {
		return b, nil
	}
	return entity.Blob{}, domain.NewNotFoundError("blob", id)
}

func newTestEngine(source BlobSource) *server.Hertz {
	h := server.Default()
	blobs := NewBlobHandler(source)
	health := NewHealthHandler(func() int { return 2 })
	h.GET("/blobs/:id", blobs.Get)
	h.GET("/health/ready", health.Readiness)
	h.GET("/health/live", health.Liveness)
	h.GET("/ping", health.Ping)
	return h
}

func TestBlobHandler_Get(t *testing.T) {
	h := newTestEngine(mapSource{
		"abc": {Data: []byte("%PDF-1.7"), ContentType: "application/pdf", FileName: "q1.pdf"},
	})

	w := ut.PerformRequest(h.Engine, "GET", "/blobs/abc", nil)
	resp := w.Result()

	require.Equal(t, 200, resp.StatusCode())
	require.Equal(t, "application/pdf", string(resp.Header.ContentType()))
	require.Equal(t, `inline; filename="q1.pdf"`, string(resp.Header.Peek("Content-Disposition")))
	require.Equal(t, "no-store", string(resp.Header.Peek("Cache-Control")))
	require.Equal(t, []byte("%PDF-1.7"), resp.Body())
}

func TestBlobHandler_NotFound(t *testing.T) {
	h := newTestEngine(mapSource{})

	w := ut.PerformRequest(h.Engine, "GET", "/blobs/released", nil)
	resp := w.Result()

	require.Equal(t, 404, resp.StatusCode())

	var body Response
	require.NoError(t, sonic.Unmarshal(resp.Body(), &body))
	require.Equal(t, string(entity.CodeNotFound), body.Code)
	require.Equal(t, "blob 'released' not found", body.Message)
}

func TestHealthHandler(t *testing.T) {
	h := newTestEngine(mapSource{})

	tests := []struct {
		path string
		want string
	}{
		{path: "/ping", want: `"message":"pong"`},
		{path: "/health/live", want: `"status":"alive"`},
		{path: "/health/ready", want: `"live_blobs":2`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := ut.PerformRequest(h.Engine, "GET", tt.path, nil)
			require.Equal(t, 200, w.Result().StatusCode())
			require.Contains(t, string(w.Result().Body()), tt.want)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "not found", err: domain.NewNotFoundError("blob", "x"), wantCode: 404, wantBody: "NOT_FOUND"},
		{name: "invalid input", err: domain.NewInvalidInputError("bad id"), wantCode: 400, wantBody: "bad id"},
		{name: "internal hides details", err: domain.NewInternalError(context.Canceled), wantCode: 500, wantBody: "internal server error"},
		{name: "plain error", err: context.DeadlineExceeded, wantCode: 500, wantBody: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := server.Default()
			h.GET("/err", func(ctx context.Context, c *app.RequestContext) {
				ErrorResponse(c, tt.err)
			})

			w := ut.PerformRequest(h.Engine, "GET", "/err", nil)
			require.Equal(t, tt.wantCode, w.Result().StatusCode())
			require.Contains(t, string(w.Result().Body()), tt.wantBody)
		})
	}
}
