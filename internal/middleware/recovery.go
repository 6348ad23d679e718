package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/mansidw/aakar-cli/internal/domain/entity"
	pkglogger "github.com/mansidw/aakar-cli/pkg/logger"
)

// Recovery turns a handler panic into a 500 response. A panic while serving
// a blob must not take the chat session down with it.
func Recovery() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				pkglogger.FromContext(ctx).Error("panic recovered",
					"request_id", GetRequestID(c),
					"path", string(c.Path()),
					"panic", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(consts.StatusInternalServerError, utils.H{
					"code":    entity.CodeInternal,
					"message": "internal server error",
				})
			}
		}()

		c.Next(ctx)
	}
}
