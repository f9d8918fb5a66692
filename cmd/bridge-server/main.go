package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yideshare/internal/cas"
	"yideshare/internal/config"
	"yideshare/internal/directory"
	"yideshare/internal/handler"
	"yideshare/internal/middleware"
	"yideshare/internal/observability"
	"yideshare/internal/repository/postgres"
	"yideshare/internal/service"
	"yideshare/internal/store/memory"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting bridge server")

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(connCtx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	rideRepo := postgres.NewRideRepository(db)
	bookmarkRepo := postgres.NewBookmarkRepository(db)

	pendingStore := memory.NewPendingAuthStore()
	sessionStore := memory.NewSessionStore()

	casClient := cas.NewClient(cfg.CASBaseURL)
	yalies := directory.NewYaliesClient(cfg.YaliesAPIURL, cfg.YaliesAPIKey)

	authService := service.NewAuthService(pendingStore, sessionStore, casClient, yalies, cfg.PublicBaseURL)
	rideService := service.NewRideService(rideRepo, bookmarkRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startAuthCleanup(ctx, pendingStore, sessionStore)
	slog.Info("auth cleanup task started")

	authHandler := handler.NewAuthHandler(authService)
	rideHandler := handler.NewRideHandler(rideService)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db))
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.NewRateLimiter(5, 10)
	apiLimiter := middleware.NewRateLimiter(20, 50)
	defer authLimiter.Stop()
	defer apiLimiter.Stop()

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())

			r.Get("/auth/mobile/login", authHandler.Login)
			r.Get("/auth/mobile/callback", authHandler.Callback)
			r.Get("/auth/mobile/poll", authHandler.Poll)
			r.Post("/auth/mobile/validate", authHandler.ValidateToken)
			r.Post("/auth/mobile/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionStore))
			r.Use(apiLimiter.Middleware())

			r.Get("/rides", rideHandler.Search)
			r.Post("/rides", rideHandler.Create)
			r.Get("/rides/user", rideHandler.ListMine)
			r.Put("/rides/{id}", rideHandler.Update)
			r.Delete("/rides/{id}", rideHandler.Delete)

			r.Get("/bookmarks", rideHandler.ListBookmarks)
			r.Post("/bookmarks/toggle", rideHandler.ToggleBookmark)
			r.Get("/bookmarks/check", rideHandler.CheckBookmark)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("bridge server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	slog.Info("server stopped gracefully")
}

// startAuthCleanup sweeps expired login attempts and idle sessions. Expired
// pending entries must leave the store so late polls see a timeout rather
// than hang forever.
func startAuthCleanup(ctx context.Context, pending *memory.PendingAuthStore, sessions *memory.SessionStore) {
	pendingTicker := time.NewTicker(1 * time.Minute)
	defer pendingTicker.Stop()
	sessionTicker := time.NewTicker(1 * time.Hour)
	defer sessionTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pendingTicker.C:
			if n, err := pending.DeleteExpired(ctx); err != nil {
				slog.Error("pending auth cleanup failed", slog.String("error", err.Error()))
			} else if n > 0 {
				slog.Info("cleaned up expired login attempts", slog.Int64("count", n))
			}
			observability.PendingAuthsActive.Set(float64(pending.Len()))
			observability.SessionsActive.Set(float64(sessions.Len()))
		case <-sessionTicker.C:
			if n, err := sessions.DeleteExpired(ctx); err != nil {
				slog.Error("session cleanup failed", slog.String("error", err.Error()))
			} else if n > 0 {
				slog.Info("cleaned up idle sessions", slog.Int64("count", n))
			}
		}
	}
}
