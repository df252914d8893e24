package http

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds basic, sensible security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	// Pages carry inline scripts and styles. Post images may live on any
	// host, and the activity notice connects back over websocket.
	csp := "default-src 'self';"
	csp += " script-src 'self' 'unsafe-inline';"
	csp += " style-src 'self' 'unsafe-inline';"
	csp += " img-src * data:;"
	csp += " connect-src 'self' ws: wss:;"

	return func(c *gin.Context) {
		// Prevents clickjacking
		c.Header("X-Frame-Options", "DENY")
		// Prevents MIME-type sniffing
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", csp)
		c.Next()
	}
}
