package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// HealthHandler serves liveness and readiness probes of the blob server
type HealthHandler struct {
	liveBlobs func() int
}

// NewHealthHandler creates a health handler. liveBlobs reports the number of
// blobs currently held and may be nil.
func NewHealthHandler(liveBlobs func() int) *HealthHandler {
	return &HealthHandler{liveBlobs: liveBlobs}
}

// Ping 基本健康检查
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":  "ok",
		"message": "pong",
	})
}

// Readiness reports ready together with the number of live blobs
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	live := 0
	if h.liveBlobs != nil {
		live = h.liveBlobs()
	}
	c.JSON(consts.StatusOK, utils.H{
		"status":     "ready",
		"live_blobs": live,
	})
}

// Liveness 存活检查
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status": "alive",
	})
}
