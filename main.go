package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"santavideo/config"
	"santavideo/handlers"
	"santavideo/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	if err := utils.EnsureDirs(cfg.UploadDir, cfg.TempDir); err != nil {
		logger.Fatal("failed to prepare directories", zap.Error(err))
	}

	// Create Gin router
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Finished videos are served statically as the fallback delivery path
	router.Static("/uploads/videos", cfg.UploadDir+"/videos")

	// Initialize video handler
	videoHandler, err := handlers.NewVideoHandler(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize handler", zap.Error(err))
	}

	// API routes
	api := router.Group("/api")
	{
		api.GET("/templates", videoHandler.ListTemplates)
		api.GET("/scripts", videoHandler.ListScripts)
		api.POST("/generate", videoHandler.Generate)
		api.GET("/status/:job_id", videoHandler.GetStatus)
		api.GET("/download/:job_id", videoHandler.Download)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
