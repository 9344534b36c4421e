package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/leadscout/leadscout-backend/api"
	"github.com/leadscout/leadscout-backend/services"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize run-history database
	services.InitDB()

	r := gin.Default()
	r.Use(api.CORSMiddleware())
	r.Use(api.BackendKeyMiddleware())

	api.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting LeadScout backend on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
