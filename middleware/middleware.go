package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger records each request in the application's log format once the
// handler chain completes. The level follows the response status so a
// scan of the log surfaces failing endpoints.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		level := "INFO"
		switch {
		case status >= http.StatusInternalServerError:
			level = "ERROR"
		case status >= http.StatusBadRequest:
			level = "WARN"
		}

		msg := "%s: [HTTP] %d %s %s from %s in %v"
		args := []interface{}{level, status, c.Request.Method, c.Request.URL.Path, c.ClientIP(), time.Since(start)}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			msg += " errors=%q"
			args = append(args, errs)
		}
		log.Printf(msg, args...)
	}
}

// Cors allows browser views served from any origin to call the API. The
// surface is GET/POST only, so the allowance list stays that narrow.
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
