package util

import (
	"net/http"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of the uniform JSON envelope.
type Response map[string]interface{}

// Business codes carried next to the HTTP status.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeConflict     = 40002
	CodeProtected    = 40003
	CodeFrozenState  = 40004
	CodeNotEmpty     = 40005
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// Success writes the uniform success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes the uniform error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// AppError maps a typed service error onto the envelope. Errors may
// carry details (e.g. the current balance on a rejected freeze) which
// are included verbatim.
func AppError(c *gin.Context, err error) {
	e := apperr.AsError(err)
	if e == nil {
		Error(c, http.StatusInternalServerError, CodeServerErr, "internal error")
		return
	}

	status := http.StatusBadRequest
	code := CodeInvalidParam
	switch e.Kind {
	case apperr.Validation:
		status, code = http.StatusBadRequest, CodeInvalidParam
	case apperr.Conflict:
		status, code = http.StatusBadRequest, CodeConflict
	case apperr.Protected:
		status, code = http.StatusBadRequest, CodeProtected
	case apperr.AlreadyFrozen, apperr.NotFrozen:
		status, code = http.StatusBadRequest, CodeFrozenState
	case apperr.Frozen:
		// Frozen write targets are reported like missing ones.
		status, code = http.StatusNotFound, CodeNotFound
	case apperr.NotEmpty:
		status, code = http.StatusBadRequest, CodeNotEmpty
	case apperr.NotFound:
		status, code = http.StatusNotFound, CodeNotFound
	case apperr.Internal:
		status, code = http.StatusInternalServerError, CodeServerErr
	}

	body := gin.H{
		"code":    code,
		"kind":    string(e.Kind),
		"message": e.Message,
	}
	for k, v := range e.Details {
		body[k] = v
	}
	c.JSON(status, body)
}
