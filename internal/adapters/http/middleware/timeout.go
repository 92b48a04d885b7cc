package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/globedrop/ngo-directory/internal/domain"
)

// StoreDeadline bounds each directory request by timeout. Store and cache
// calls observe the deadline and fail with context.DeadlineExceeded. A
// handler that ran out of time without writing or forwarding anything gets
// an unavailable error forwarded on its behalf.
func StoreDeadline(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() && len(c.Errors) == 0 {
			_ = c.Error(domain.NewUnavailableError("directory", fmt.Sprintf("no answer within %s", timeout)))
		}
	}
}
