package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with a {"error": message} body.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithFieldErrors aborts the request with a field -> messages body.
func RespondWithFieldErrors(c *gin.Context, status int, errs FieldErrors) {
	c.AbortWithStatusJSON(status, errs)
}
