package response

import (
	"github.com/gin-gonic/gin"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Success writes data as the bare JSON body.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func Error(c *gin.Context, status int, errorCode string, message string) {
	c.JSON(status, ErrorBody{
		Code:    errorCode,
		Message: message,
	})
}

// ValidationFailed writes the field-level error map of a rejected write.
func ValidationFailed(c *gin.Context, status int, message string, fields map[string][]string) {
	c.JSON(status, ValidationBody{
		Message: message,
		Errors:  fields,
	})
}

func NoContent(c *gin.Context, status int) {
	c.Status(status)
	c.Writer.WriteHeaderNow()
}
