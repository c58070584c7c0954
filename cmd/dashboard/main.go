package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/taskdash/taskdash-go/internal/config"
	"github.com/taskdash/taskdash-go/internal/handler"
	"github.com/taskdash/taskdash-go/internal/middleware"
	"github.com/taskdash/taskdash-go/internal/repository"
	"github.com/taskdash/taskdash-go/internal/session"
	"github.com/taskdash/taskdash-go/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Logger(os.Stderr))

	client, err := repository.NewClient(repository.ClientConfig{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		Burst:     cfg.APIBurst,
	})
	if err != nil {
		slog.Error("task api client", "error", err)
		os.Exit(1)
	}

	guard, err := middleware.NewRouteGuard(store.TokenCookie, "/", cfg.ProtectedPaths)
	if err != nil {
		slog.Error("route guard", "error", err)
		os.Exit(1)
	}

	sessions := session.NewManager(client, cfg.APITimeout, store.TokenTTL)
	defer sessions.Stop()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	r := handler.NewRouter(ctx, handler.RouterConfig{
		Auth:         repository.NewAuthRepository(client),
		Sessions:     sessions,
		Guard:        guard,
		Timeout:      cfg.APITimeout,
		PageSize:     cfg.PageSize,
		SecureCookie: cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
