package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/Hecoloko/procurement-app-sub000/internal/tracing"
)

// Tracing returns a gin middleware that wraps each request in a tracer
// transaction named after the route
func Tracing(tracer tracing.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := tracer.StartTransaction(c.Request.Method + " " + c.FullPath())
		defer tracer.EndTransaction(txn)

		if txn != nil {
			c.Request = c.Request.WithContext(newrelic.NewContext(c.Request.Context(), txn))
		}

		c.Next()

		if len(c.Errors) > 0 {
			tracer.RecordError(txn, c.Errors.Last().Err)
		}
	}
}
