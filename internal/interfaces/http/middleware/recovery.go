package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

// Recovery turns a panic into a 500 response in the standard envelope.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error("panic recovered",
				logging.Any("panic", rec),
				logging.String("path", c.Request.URL.Path),
				logging.String("request_id", GetRequestID(c)),
				logging.String("stack", string(debug.Stack())))
			_ = c.Error(fmt.Errorf("panic: %v", rec))

			resp := common.NewErrorResponse(errors.ErrCodeInternal.String(), errors.DefaultMessageForCode(errors.ErrCodeInternal))
			resp.RequestID = GetRequestID(c)
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
		}()
		c.Next()
	}
}
