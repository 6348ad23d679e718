package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"

	pkglogger "github.com/mansidw/aakar-cli/pkg/logger"
)

// RequestIDKey is the header carrying the request id
const RequestIDKey = "X-Request-ID"

// quietPaths are polled by tooling and are not logged
var quietPaths = []string{"/health/", "/metrics", "/ping"}

// Logger logs one record per request. Every request gets an X-Request-ID
// response header, reusing the caller's id when one is sent; the request
// logger is stored in the request context for handlers.
func Logger(base *slog.Logger) app.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		requestID := string(c.Request.Header.Peek(RequestIDKey))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response.Header.Set(RequestIDKey, requestID)

		logger := pkglogger.WithRequestID(base, requestID).With(
			"method", string(c.Method()),
			"path", path,
		)
		ctx = pkglogger.WithContext(ctx, logger)

		c.Next(ctx)

		if isQuiet(path) {
			return
		}

		statusCode := c.Response.StatusCode()
		latency := time.Since(start)
		logger = logger.With(
			"status", statusCode,
			"bytes", len(c.Response.Body()),
			"latency_ms", latency.Milliseconds(),
		)

		switch {
		case statusCode >= 500:
			logger.Error("request completed with server error")
		case statusCode >= 400:
			logger.Warn("request completed with client error")
		default:
			logger.Debug("request completed")
		}
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// GetRequestID returns the request id assigned by Logger
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDKey))
}
