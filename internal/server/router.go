// Package server assembles the HTTP API over a domain store.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/fkhayef/studyhub/docs"
	"github.com/fkhayef/studyhub/internal/group"
	"github.com/fkhayef/studyhub/internal/notification"
	"github.com/fkhayef/studyhub/internal/session"
	"github.com/fkhayef/studyhub/internal/store"
	"github.com/fkhayef/studyhub/internal/user"
	mw "github.com/fkhayef/studyhub/pkg/middleware"
)

// Options configures the router
type Options struct {
	SessionKey          []byte
	SecureCookies       bool
	BcryptCost          int
	AllowTestUserHeader bool
}

// NewRouter wires every feature over st and returns the root handler
func NewRouter(st *store.Store, opts Options, logger *zap.Logger) http.Handler {
	auth := mw.NewSessionAuth(opts.SessionKey, opts.SecureCookies, logger)

	// Notification feature; group and session features report through it
	notificationRepo := notification.NewRepository(st)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// User feature
	userRepo := user.NewRepository(st)
	userService := user.NewService(userRepo, opts.BcryptCost, logger)
	userHandler := user.NewHandler(userService, auth, logger)

	// Group feature
	groupRepo := group.NewRepository(st)
	groupService := group.NewService(groupRepo, notificationService, logger)
	groupHandler := group.NewHandler(groupService)

	// Session feature
	sessionRepo := session.NewRepository(st)
	sessionService := session.NewService(sessionRepo, notificationService, logger)
	sessionHandler := session.NewHandler(sessionService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(auth.LoadUser)
	if opts.AllowTestUserHeader {
		r.Use(mw.TestUserMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		groups := groupHandler.Routes()
		groups.Mount("/{id}/sessions", sessionHandler.GroupRoutes())

		r.Mount("/auth", userHandler.AuthRoutes())
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groups)
		r.Mount("/sessions", sessionHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	return r
}
