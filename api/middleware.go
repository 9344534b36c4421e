package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the web UI (served from another origin) to call the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-LeadScout-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// BackendKeyMiddleware ensures external traffic carries the master key when
// one is configured. Prevents anyone from hitting a deployed backend directly
// without routing through the frontend.
func BackendKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := os.Getenv("LEADSCOUT_API_KEY")
		if expected != "" {
			actual := c.GetHeader("X-LeadScout-Key")
			if actual != expected {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid backend access key"})
				return
			}
		}
		c.Next()
	}
}
