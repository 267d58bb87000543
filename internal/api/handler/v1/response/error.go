package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	StatusCode int `json:"-"`

	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Balance *int   `json:"balance,omitempty"` // set on insufficient-token errors only
}

func (e *Err) Error() string {
	return e.Msg
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Code:       http.StatusBadRequest,
		Msg:        err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Code:       http.StatusUnauthorized,
		Msg:        err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Code:       http.StatusUnauthorized,
		Msg:        "wrong credentials",
	}
}

// ErrInsufficientTokens is the one domain error distinguished at the
// boundary: 402 with the current balance, so the client can branch into the
// purchase flow.
func ErrInsufficientTokens(balance int) *Err {
	return &Err{
		StatusCode: http.StatusPaymentRequired,
		Code:       http.StatusPaymentRequired,
		Msg:        "insufficient token balance",
		Balance:    &balance,
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Code:       http.StatusForbidden,
		Msg:        err.Error(),
	}
}

func ErrNotFound(entity, key string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Code:       http.StatusNotFound,
		Msg:        fmt.Sprintf("%v with %v (%v) not found", entity, key, value),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		StatusCode: http.StatusInternalServerError,
		Code:       http.StatusInternalServerError,
		Msg:        err.Error(),
	}
}

func RenderErr(ctx *gin.Context, err *Err) {
	if err.StatusCode == http.StatusInternalServerError {
		zap.L().Error("internal server error",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)

		// Do not leak internals to the client.
		err.Msg = "internal server error"
	}

	ctx.AbortWithStatusJSON(err.StatusCode, err)
}
