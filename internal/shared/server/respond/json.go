package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload as the response body with the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK is the 200 shorthand for handlers that produced a result.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
