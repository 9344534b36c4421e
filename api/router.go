package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", healthCheck)
		apiGroup.GET("/keys", getKeys)
		apiGroup.POST("/keys", saveKeys)
		apiGroup.GET("/model", getModelHandler)
		apiGroup.POST("/model", setModelHandler)
		apiGroup.POST("/leads/generate", generateLeadsHandler)
		apiGroup.GET("/leads/:id/csv", runCSVHandler)
		apiGroup.GET("/runs", runsHandler)
		apiGroup.POST("/reset", resetHandler)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
