package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javimosch/gutcheck-saas/internal/config"
	"github.com/javimosch/gutcheck-saas/internal/domain/services"
	"github.com/javimosch/gutcheck-saas/internal/infrastructure/cache"
	"github.com/javimosch/gutcheck-saas/internal/infrastructure/database"
	"github.com/javimosch/gutcheck-saas/internal/interfaces/http/handlers"
	"github.com/javimosch/gutcheck-saas/internal/interfaces/http/middleware"
	"github.com/javimosch/gutcheck-saas/internal/providers"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	userRepo := database.NewUserRepository(db)
	ideaRepo := database.NewIdeaRepository(db)

	vault := services.NewCredentialVault(cfg.Crypto.EncryptionKey)
	if !vault.Configured() {
		log.Println("ENCRYPTION_KEY not set, bring-your-own-key features disabled")
	}

	accountService := services.NewAccountService(userRepo, vault)
	quotaService := services.NewQuotaService(userRepo, cfg.Quota.FreeLimit)

	llmClient := providers.NewOpenAIClient(cfg.AI.OpenAIBaseURL)
	evaluator := providers.NewEvaluator(llmClient, cfg.AI.OpenAIKey, cfg.AI.ModelName)
	transcriber := providers.NewGroqClient(cfg.AI.GroqKey)

	ideaService := services.NewIdeaService(ideaRepo, accountService, quotaService, evaluator, transcriber)

	authHandler := handlers.NewAuthHandler(accountService, quotaService)
	ideasHandler := handlers.NewIdeasHandler(ideaService)

	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window))

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "connected"
		if err := db.Health(); err != nil {
			dbStatus = "disconnected"
		}
		redisStatus := "connected"
		if err := redisClient.Health(); err != nil {
			redisStatus = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": dbStatus,
			"redis":    redisStatus,
			"time":     time.Now(),
		})
	})

	api := router.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/check", authHandler.Check)

	authenticated := api.Group("")
	authenticated.Use(middleware.AuthContext(accountService))

	authenticated.GET("/auth/settings", authHandler.GetSettings)
	authenticated.PUT("/auth/settings", authHandler.UpdateSettings)

	authenticated.POST("/ideas", ideasHandler.Submit)
	authenticated.GET("/ideas", ideasHandler.List)
	authenticated.GET("/ideas/:id", ideasHandler.Get)
	authenticated.POST("/ideas/:id/analyze", ideasHandler.Analyze)
	authenticated.PUT("/ideas/:id/notes", ideasHandler.UpdateNotes)
	authenticated.POST("/ideas/:id/archive", ideasHandler.Archive)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("GutCheck server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("✅ GutCheck server stopped")
}
