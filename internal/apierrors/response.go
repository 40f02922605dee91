package apierrors

import (
	"github.com/gin-gonic/gin"

	"github.com/goatkit/kbgen/internal/kberrors"
)

// Failure is the admin action failure body. The success/message pair is the
// contract the admin UI reads; code is there for API clients.
type Failure struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error sends a failure response using a registered error code
func Error(c *gin.Context, code string) {
	ErrorWithMessage(c, code, Registry.Message(code))
}

// ErrorWithMessage sends a failure response with a custom message
func ErrorWithMessage(c *gin.Context, code, message string) {
	c.JSON(Registry.HTTPStatus(code), Failure{Code: code, Message: message})
}

// FromError maps a classified error to its registered code and the message
// an operator should see.
func FromError(err error) (ErrorCode, string) {
	e := Registry.ForKind(kberrors.KindOf(err))
	return e, kberrors.MessageOf(err)
}

// Respond sends the failure response for err.
func Respond(c *gin.Context, err error) {
	e, message := FromError(err)
	c.JSON(e.HTTPStatus, Failure{Code: e.Code, Message: message})
}
