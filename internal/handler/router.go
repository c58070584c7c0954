package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskdash/taskdash-go/internal/middleware"
	"github.com/taskdash/taskdash-go/internal/session"
	"github.com/taskdash/taskdash-go/internal/store"
)

// RouterConfig holds the dependencies of the dashboard router.
type RouterConfig struct {
	Auth         store.AuthAPI
	Sessions     *session.Manager
	Guard        *middleware.RouteGuard
	Timeout      time.Duration
	PageSize     int
	SecureCookie bool
}

// NewRouter builds the dashboard HTTP surface. ctx bounds background work
// owned by the router's middleware.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Sessions, cfg.Timeout, cfg.SecureCookie)
	taskHandler := NewTaskHandler(cfg.Sessions, cfg.PageSize)
	userHandler := NewUserHandler(cfg.Sessions)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cfg.Guard.Middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "login": "/login"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, 5, 10))
		r.Post("/login", authHandler.HandleLogin)
	})
	r.Post("/logout", authHandler.HandleLogout)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/tasks", taskHandler.HandleList)
		r.Post("/tasks", taskHandler.HandleCreate)
		r.Patch("/tasks/{id}", taskHandler.HandleUpdate)
		r.Delete("/tasks/{id}", taskHandler.HandleDelete)
		r.Get("/users", userHandler.HandleList)
		r.Get("/summary", userHandler.HandleSummary)
	})

	return r
}
