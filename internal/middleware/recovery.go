package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/clinic-triage/pkg/errors"
)

// Recovery turns a panic into a 500 rendered like ErrorHandler's responses.
// The route template is logged instead of the raw path, which may hold a CPF.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			traceID := c.GetString(ContextRequestID)

			log.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("method", c.Request.Method).
				Str("route", route).
				Str("request_id", traceID).
				Msg("Request panic recovered")

			_ = c.Error(apperrors.Internal(fmt.Errorf("panic: %v", rec)))
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "internal server error",
				TraceID: traceID,
			})
		}()
		c.Next()
	}
}
