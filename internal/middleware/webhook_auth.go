package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebhookAuth rejects requests whose header does not carry the shared secret.
func WebhookAuth(header, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(header)
		if key == "" {
			abortUnauthorized(c, header+" header is required")
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			abortUnauthorized(c, "invalid "+header+" key")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":     false,
		"statusCode": http.StatusUnauthorized,
		"message":    message,
	})
}
