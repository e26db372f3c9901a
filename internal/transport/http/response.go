package httptransport

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondSuccess writes data as JSON.
func RespondSuccess(c *gin.Context, httpStatus int, data interface{}) {
	c.JSON(httpStatus, data)
}

// RespondError writes {"error": message}.
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorResponse{Error: message})
}
