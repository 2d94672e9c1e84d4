package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hobbyhub/profile-client/internal/api"
	"github.com/hobbyhub/profile-client/internal/auth"
	"github.com/hobbyhub/profile-client/internal/config"
	"github.com/hobbyhub/profile-client/internal/logging"
	"github.com/hobbyhub/profile-client/internal/middleware"
	"github.com/hobbyhub/profile-client/internal/pages"
	"github.com/hobbyhub/profile-client/internal/store"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		boot := logging.New("info", os.Stderr)
		boot.Fatal().Err(err).Msg("Failed to load config")
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)

	// ── Session & API client ─────────────────────────────────
	session, err := auth.NewSession(cfg.APIBaseURL, cfg.CSRFCookieName, cfg.APICookies)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create session")
	}
	client := api.NewClient(cfg.APIBaseURL, session, cfg.HTTPTimeout, logger)

	// ── Stores ───────────────────────────────────────────────
	users := store.NewUserStore(client, logger, store.WithSubscriberBuffer(cfg.SubscriberBuffer))
	defer users.Close()
	hobbies := store.NewHobbyStore(client, logger, store.WithSubscriberBuffer(cfg.SubscriberBuffer))
	defer hobbies.Close()

	events, unsubscribe := users.Subscribe()
	defer unsubscribe()
	go func() {
		for ev := range events {
			logger.Debug().Str("store", ev.Store).Str("field", string(ev.Field)).Msg("state changed")
		}
	}()

	// ── Router ───────────────────────────────────────────────
	guard := middleware.NewGuard(users)
	pageHandler := pages.NewHandler(users, hobbies, session, logger)

	r := newRouter(cfg, guard, pageHandler)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("api", cfg.APIBaseURL).Msg("Profile client listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down...")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
}

// newRouter mounts the health check and the session-guarded pages.
func newRouter(cfg *config.Config, guard *middleware.Guard, pageHandler *pages.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(guard))
		pageHandler.RegisterRoutes(r)
	})
	return r
}
