package apperr

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Respond writes the error envelope for err and aborts the handler chain.
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)
	if kind == KindInternal || kind == KindUpstream {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(kind.Status(), gin.H{
		"success": false,
		"message": Message(err),
	})
}

// Recovery converts panics into the same envelope instead of crashing the process.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("panic recovered: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "internal server error",
		})
	})
}

// BindError converts a gin binding failure into a validation error.
func BindError(err error) error {
	return &Error{Kind: KindValidation, Message: "invalid request body: " + err.Error()}
}
