package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemCheck/internal/interfaces/http/middleware"
	"github.com/turtacn/ChemCheck/pkg/errors"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

func respondOK[T any](c *gin.Context, status int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(status, resp)
}

// respondError maps err onto the error envelope. Messages of internal
// errors are replaced by the code's default text.
func respondError(c *gin.Context, err error) {
	code := errors.ErrCodeInternal
	message := ""
	var detail string

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		detail = appErr.Detail
	}
	status := errors.HTTPStatusForCode(code)
	if status >= http.StatusInternalServerError || message == "" {
		message = errors.DefaultMessageForCode(code)
		detail = ""
	}

	_ = c.Error(err)
	resp := common.NewErrorResponse(code.String(), message)
	if detail != "" {
		resp.Error.Details = map[string]interface{}{"detail": detail}
	}
	resp.RequestID = middleware.GetRequestID(c)
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the body into dst and reports a bad request on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, errors.InvalidParam("invalid request body").WithDetail(err.Error()))
		return false
	}
	return true
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errors.InvalidParam(name + " must be a positive integer").WithDetail(raw)
	}
	return v, nil
}
