package middleware

import "github.com/gin-gonic/gin"

// ClaimsKey is the gin context key AuthMiddleware stores verified claims under.
const ClaimsKey = "claims"

// clientKey picks the bucket a request is counted against. The limiters run
// globally ahead of the per-route auth guard, so only the client IP is known.
func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
