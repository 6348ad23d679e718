package router

import (
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/network/standard"

	"github.com/mansidw/aakar-cli/internal/handler"
	"github.com/mansidw/aakar-cli/internal/middleware"
	"github.com/mansidw/aakar-cli/pkg/metrics"
)

// Options configures the local blob server
type Options struct {
	ListenAddr    string
	EnableMetrics bool
	Logger        *slog.Logger
}

// NewBlobServer creates (but does not start) the Hertz server that backs
// blob URLs, with every route registered
func NewBlobServer(opts Options, blobs handler.BlobSource, liveBlobs func() int) *server.Hertz {
	h := server.New(
		server.WithHostPorts(opts.ListenAddr),
		server.WithReadTimeout(30*time.Second),
		server.WithWriteTimeout(2*time.Minute),
		server.WithExitWaitTime(time.Second),
		server.WithDisablePrintRoute(true),
		server.WithTransport(standard.NewTransporter),
	)

	Setup(h, handler.NewBlobHandler(blobs), handler.NewHealthHandler(liveBlobs), opts)
	return h
}

// Setup sets up all routes
func Setup(
	h *server.Hertz,
	blobHandler *handler.BlobHandler,
	healthHandler *handler.HealthHandler,
	opts Options,
) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger(opts.Logger))
	h.Use(middleware.CORS())

	// Health check routes
	h.GET("/ping", healthHandler.Ping)
	h.GET("/health/ready", healthHandler.Readiness)
	h.GET("/health/live", healthHandler.Liveness)

	if opts.EnableMetrics {
		h.GET("/metrics", adaptor.HertzHandler(metrics.Handler()))
	}

	// Report payloads
	blobs := h.Group("/blobs")
	{
		blobs.GET("/:id", blobHandler.Get)
		blobs.HEAD("/:id", blobHandler.Get)
	}
}
