package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/clinic-triage/pkg/errors"
	"github.com/jwalitptl/clinic-triage/pkg/validator"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err with the status of its AppError code. Errors
// without a code are internal; their text is logged, not returned.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if appErr.Code == apperrors.ErrInternal {
			c.JSON(status, NewErrorResponse("internal server error"))
			return
		}
	}
	c.JSON(status, NewErrorResponse(appErr.Error()))
}

// RespondBindError reports request binding failures field by field.
func RespondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, &Response{
		Status:  "error",
		Message: validator.Summary(err),
		Errors:  validator.Messages(err),
	})
}
