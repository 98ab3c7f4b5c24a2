// Package response is the envelope for the /api/v1 surface. The legacy
// /predict endpoint answers its own flat JSON shape and does not use it.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// App-level codes carried inside the envelope alongside the HTTP status.
const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeStationExists      = 40001
	CodeEmailExists        = 40002
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeInternalServer     = 50000
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
