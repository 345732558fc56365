package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"

	"github.com/tendant/simple-movies/pkg/simplemovies"
	"github.com/tendant/simple-movies/pkg/simplemovies/api"
	"github.com/tendant/simple-movies/pkg/simplemovies/config"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	svc, shutdownService, err := cfg.BuildService(ctx)
	if err != nil {
		slog.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: routes(svc, cfg),
	}

	go func() {
		slog.Info("simple-movies server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"storage", cfg.StorageType)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
	}
	if err := shutdownService(shutdownCtx); err != nil {
		slog.Error("failed to close service resources", "err", err)
	}

	slog.Info("server exiting")
}

func routes(svc simplemovies.Service, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(httprate.LimitByIP(300, time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "environment": "%s"}`, cfg.Environment)
	})

	auth := api.NewAuth(
		cfg.JWTSecret,
		cfg.AdminUsername,
		cfg.AdminPasswordHash,
		cfg.AdminTokenTTL,
		cfg.IsProduction(),
	)
	verbose := !cfg.IsProduction()

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", api.NewAuthHandler(auth).Routes())
		r.Mount("/movies", api.NewMovieHandler(svc, auth, verbose).Routes())
		r.Mount("/upload", api.NewUploadHandler(svc, auth, cfg.MaxUploadBytes, verbose).Routes())
		r.Mount("/reviews", api.NewReviewHandler(svc, verbose).Routes())
		r.Mount("/comments", api.NewCommentHandler(svc, verbose).Routes())
	})

	return r
}
