package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// CORS lets browser viewers opened on a handle fetch blobs from any origin.
// The blob server is read only, so only GET and HEAD are advertised.
func CORS() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Response.Header.Set("Access-Control-Allow-Origin", "*")
		c.Response.Header.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		c.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Range, X-Request-ID")
		c.Response.Header.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		c.Response.Header.Set("Access-Control-Max-Age", "86400")

		if string(c.Method()) == consts.MethodOptions {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}

		c.Next(ctx)
	}
}
