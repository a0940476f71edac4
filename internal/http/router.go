package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/smritirangarajan/spenderella/internal/auth"
	"github.com/smritirangarajan/spenderella/internal/http/analytics"
	authHandler "github.com/smritirangarajan/spenderella/internal/http/auth"
	"github.com/smritirangarajan/spenderella/internal/http/export"
	"github.com/smritirangarajan/spenderella/internal/http/importcsv"
	"github.com/smritirangarajan/spenderella/internal/http/matching"
	mw "github.com/smritirangarajan/spenderella/internal/http/middleware"
	"github.com/smritirangarajan/spenderella/internal/http/render"
	"github.com/smritirangarajan/spenderella/internal/http/report"
	"github.com/smritirangarajan/spenderella/internal/http/transaction"
	"github.com/smritirangarajan/spenderella/internal/http/user"
)

type Handlers struct {
	Auth        *authHandler.Handler
	User        *user.Handler
	Transaction *transaction.Handler
	Import      *importcsv.Handler
	Matching    *matching.Handler
	Analytics   *analytics.Handler
	Report      *report.Handler
	Export      *export.Handler
}

type Options struct {
	CORSOrigins []string
	Timeout     time.Duration
	Tokens      *auth.Tokens
	AuthLimiter *mw.RateLimiter
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(opts.AuthLimiter.Handler)
			}

			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(authHandler.Authenticate(opts.Tokens))

			r.Route("/user", h.User.Routes)
			r.Route("/transaction", h.Transaction.Routes)
			r.Route("/import", h.Import.Routes)
			r.Route("/matching", h.Matching.Routes)
			r.Route("/analytics", h.Analytics.Routes)
			r.Route("/report", h.Report.Routes)
			r.Route("/export", h.Export.Routes)
		})
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		render.Error(w, http.StatusNotFound, render.CodeNotFound, "Route not found")
	})

	return router
}
