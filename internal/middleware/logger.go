package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request with method, path, status, latency
// and the correlation id set by RequestID.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if len(c.Errors) > 0 {
			log.Printf("%s %s %d %s request_id=%s errors=%s",
				c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
				time.Since(start), c.GetString("request_id"), c.Errors.String())
			return
		}
		log.Printf("%s %s %d %s request_id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start), c.GetString("request_id"))
	}
}
