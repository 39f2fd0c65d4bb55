package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicErrors reports errors attached with c.Error to the New Relic
// transaction started by nrgin. Must be registered after nrgin.Middleware.
func NewRelicErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
