package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jmartin/coursehub/internal/api"
	"github.com/jmartin/coursehub/internal/cache"
	"github.com/jmartin/coursehub/internal/config"
	"github.com/jmartin/coursehub/internal/mail"
	"github.com/jmartin/coursehub/internal/media"
	"github.com/jmartin/coursehub/internal/repository"
	"github.com/jmartin/coursehub/internal/repository/postgres"
	"github.com/jmartin/coursehub/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize session cache
	var sessionCache repository.SessionCache
	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		redisCache := cache.NewRedisCache(client)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Health(pingCtx); err != nil {
			cancel()
			log.Fatalf("failed to connect to redis: %v", err)
		}
		cancel()
		sessionCache = redisCache
	} else {
		log.Println("REDIS_ADDR not set, using in-process session cache")
		sessionCache = cache.NewMemoryCache()
	}

	// Initialize media store
	mediaStore, err := media.NewS3Store(cfg.Media)
	if err != nil {
		log.Fatalf("failed to initialize media store: %v", err)
	}

	// Initialize services
	mailer := mail.NewSMTPMailer(cfg.SMTP)
	services := service.NewServices(repos, sessionCache, mailer, mediaStore, cfg)

	// Initialize router
	router := api.NewRouter(services, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
