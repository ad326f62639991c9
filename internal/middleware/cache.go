package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoStore keeps responses carrying patient data out of shared and browser
// caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, no-store, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
