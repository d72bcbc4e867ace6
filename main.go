package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"checkin-backend/handlers"
	"checkin-backend/hub"
	"checkin-backend/middleware"
	"checkin-backend/store"
)

func connectToStore() (store.Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("SQLITE_PATH")
	}
	if dsn == "" {
		dsn = "checkin.db"
	}

	s, err := store.Open(context.Background(), dsn)
	if err != nil {
		return nil, err
	}

	log.Println("Successfully connected to the database")
	return s, nil
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using default environment variables")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Println("Warning: JWT_SECRET is not set, using development fallback")
	}

	dataStore, err := connectToStore()
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer dataStore.Close()

	notificationHub := hub.New()

	// Create handlers
	authHandler := handlers.NewAuthHandler(dataStore)
	checkHandler := handlers.NewCheckHandler(dataStore, notificationHub)
	wsHandler := handlers.NewWSHandler(notificationHub)

	// Setup Gin
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/users", authHandler.ListUsers)
	}

	// Check-in/out routes, token required
	check := router.Group("/", middleware.AuthRequired())
	{
		check.POST("/checkin", checkHandler.CheckIn)
		check.POST("/checkout", checkHandler.CheckOut)
		check.GET("/check-status/:user_id", checkHandler.CheckStatus)
		check.GET("/history", checkHandler.History)
		check.GET("/online-users", checkHandler.OnlineUsers)
		check.PUT("/update-checkout/:id", checkHandler.UpdateCheckout)
	}

	// Admin reset, intended for test/demo environments
	router.DELETE("/admin/clear-db", checkHandler.ClearDB)

	// Real-time admin notifications
	router.GET("/ws", wsHandler.Serve)

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API Running")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Printf("Server starting on port %s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v\n", err)
	}
}
