package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calummcrae/showspin/internal/config"
	"github.com/calummcrae/showspin/internal/database"
	"github.com/calummcrae/showspin/internal/handlers"
	"github.com/calummcrae/showspin/internal/middleware"
	"github.com/calummcrae/showspin/internal/services"
)

func main() {
	// Check for migrate command
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrations()
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := log.New(os.Stdout, "[showspin] ", log.LstdFlags|log.Lshortfile)
	logger.Printf("Starting ShowSpin server in %s mode", cfg.Server.Env)

	// Initialize database connection
	db, err := database.New(database.Config{
		URL: cfg.Database.URL,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := database.NewRedisClient(database.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       0,
		TLS:      cfg.Redis.TLS,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize session and reset-token stores
	sessionStore := database.NewSessionStore(redisClient, 7*24*time.Hour)
	resetTokens := database.NewResetTokenStore(redisClient, time.Hour)

	// Initialize services
	userService := services.NewUserService(db.Pool)
	watchlistService := services.NewWatchlistService(db.Pool)
	ratingService := services.NewRatingService(db.Pool)
	tmdbService := services.NewTMDBService(services.TMDBConfig{
		APIKey:  cfg.TMDB.APIKey,
		BaseURL: cfg.TMDB.BaseURL,
	})
	showService := services.NewShowService(tmdbService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(sessionStore, userService, "session", cfg.IsProduction())

	// Initialize rate limiter (100 req/min in production, unlimited in local/dev)
	maxRequests := 1000
	if cfg.IsProduction() {
		maxRequests = 100
	}
	rateLimiter := middleware.NewRateLimiter(redisClient.Client, maxRequests, time.Minute, cfg.IsProduction())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		userService,
		sessionStore,
		resetTokens,
		authMiddleware,
		handlers.AuthConfig{
			GoogleClientID:     cfg.OAuth.GoogleClientID,
			GoogleClientSecret: cfg.OAuth.GoogleClientSecret,
			GitHubClientID:     cfg.OAuth.GitHubClientID,
			GitHubClientSecret: cfg.OAuth.GitHubClientSecret,
			SiteURL:            cfg.Server.SiteURL,
		},
		logger,
	)
	showHandler := handlers.NewShowHandler(showService, logger)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, logger)
	ratingHandler := handlers.NewRatingHandler(ratingService, logger)

	// Set up HTTP router
	mux := http.NewServeMux()

	// Auth routes (public)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)
	mux.Handle("POST /api/auth/update-password", authMiddleware.OptionalAuth(http.HandlerFunc(authHandler.UpdatePassword)))
	mux.Handle("GET /api/auth/me", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.Me)))
	mux.HandleFunc("GET /auth/{provider}/login", authHandler.OAuthLogin)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Show discovery routes (public, rate limited)
	mux.Handle("GET /api/shows", rateLimiter.Limit(http.HandlerFunc(showHandler.Random)))
	mux.Handle("GET /api/shows/search", rateLimiter.Limit(http.HandlerFunc(showHandler.Search)))
	mux.Handle("GET /api/shows/details", rateLimiter.Limit(http.HandlerFunc(showHandler.Details)))
	mux.Handle("GET /api/genres", rateLimiter.Limit(http.HandlerFunc(showHandler.Genres)))

	// Watchlist routes (protected with auth and rate limiting)
	mux.Handle("GET /api/watchlist", rateLimiter.Limit(authMiddleware.RequireAuth(http.HandlerFunc(watchlistHandler.List))))
	mux.Handle("POST /api/watchlist", rateLimiter.Limit(authMiddleware.RequireAuth(http.HandlerFunc(watchlistHandler.Add))))
	mux.Handle("GET /api/watchlist/contains/{tmdbShowId}", rateLimiter.Limit(authMiddleware.RequireAuth(http.HandlerFunc(watchlistHandler.Contains))))
	mux.Handle("PATCH /api/watchlist/{id}", rateLimiter.Limit(authMiddleware.RequireAuth(http.HandlerFunc(watchlistHandler.UpdateStatus))))
	mux.Handle("DELETE /api/watchlist/{id}", rateLimiter.Limit(authMiddleware.RequireAuth(http.HandlerFunc(watchlistHandler.Remove))))

	// Rating routes (protected with auth and rate limiting)
	mux.Handle("PUT /api/ratings/{tmdbShowId}", rateLimiter.Limit(authMiddleware.RequireAuth(http.HandlerFunc(ratingHandler.Save))))
	mux.Handle("GET /api/ratings/{tmdbShowId}", rateLimiter.Limit(authMiddleware.RequireAuth(http.HandlerFunc(ratingHandler.Get))))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		dbErr := db.Health(r.Context())
		redisErr := redisClient.Health(r.Context())

		if dbErr != nil || redisErr != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			dbStatus := "up"
			if dbErr != nil {
				dbStatus = "down"
			}
			redisStatus := "up"
			if redisErr != nil {
				redisStatus = "down"
			}
			fmt.Fprintf(w, `{"status":"unhealthy","database":"%s","redis":"%s"}`, dbStatus, redisStatus)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","database":"up","redis":"up"}`)
	})

	// Wrap with logging middleware
	handler := middleware.Logger(logger)(mux)

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server exited")
}

// runMigrations applies the embedded database migrations
func runMigrations() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(database.Config{
		URL: cfg.Database.URL,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db.Pool)

	if err := migrator.Up(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
}
