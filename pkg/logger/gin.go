package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware logs one line per request: 5xx at error, 4xx at warn and
// everything else at debug so that normal traffic stays quiet at info level.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		line := "%s %s -> %d (%s) %s"
		args := []interface{}{c.Request.Method, path, status, time.Since(start), c.ClientIP()}
		switch {
		case status >= 500:
			if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
				line += " errors=%s"
				args = append(args, msg)
			}
			Errorf(line, args...)
		case status >= 400:
			Warnf(line, args...)
		default:
			Debugf(line, args...)
		}
	}
}
