package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemCheck/internal/interfaces/http/middleware"
	"github.com/turtacn/ChemCheck/pkg/errors"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

func notFound(c *gin.Context) {
	resp := common.NewErrorResponse(errors.ErrCodeNotFound.String(), "route not found")
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(http.StatusNotFound, resp)
}

func methodNotAllowed(c *gin.Context) {
	resp := common.NewErrorResponse(errors.ErrCodeBadRequest.String(), "method not allowed")
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(http.StatusMethodNotAllowed, resp)
}
