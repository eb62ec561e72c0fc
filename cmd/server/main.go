package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/friend-ai/backend/api/handlers"
	"github.com/friend-ai/backend/internal/auth"
	"github.com/friend-ai/backend/internal/chat"
	"github.com/friend-ai/backend/internal/config"
	"github.com/friend-ai/backend/internal/db"
	"github.com/friend-ai/backend/internal/generator"
	"github.com/friend-ai/backend/internal/realtime"
	"github.com/friend-ai/backend/internal/repository"
	"github.com/friend-ai/backend/internal/user"
)

func main() {
	cfg := config.Load()

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database
	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	messageRepo := repository.NewMessageRepository(database)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	userService := user.NewService(userRepo)
	recorder := chat.NewRecorder(messageRepo)

	realtimeService := realtime.NewService(realtime.Config{
		Generator:      generator.NewKeywordGenerator(),
		Recorder:       recorder,
		StreamInterval: cfg.StreamInterval,
		CheckOrigin: func(r *http.Request) bool {
			if cfg.AllowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == cfg.AllowedOrigin
		},
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	realtimeHandler := handlers.NewRealtimeHandler(realtimeService)
	messageHandler := handlers.NewMessageHandler(messageRepo, tokens)

	// Initialize Gin router
	r := gin.Default()

	// Enable CORS for development
	r.Use(corsMiddleware(cfg.AllowedOrigin))

	// Root and health endpoints
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome to your personalized AI assistant!",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		authHandler.RegisterRoutes(api)
		realtimeHandler.RegisterRoutes(api)
		messageHandler.RegisterRoutes(api)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		db.CloseDB()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware returns a CORS middleware for development.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
