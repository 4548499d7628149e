package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as cacheable by the requesting browser only.
// Financial data must never land in a shared cache.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxAgeSeconds <= 0 {
			c.Header("Cache-Control", "no-store")
		} else {
			c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", maxAgeSeconds))
		}
		c.Next()
	}
}
