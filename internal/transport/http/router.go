package http

import (
	"log/slog"
	"net/http"

	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/transport/http/handler"
	appmiddleware "github.com/go-account-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(deps.Metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		// No verifier: requests carry no claims and the handlers answer 401.
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// Guards code guessing on the public confirm/reset endpoints.
	proxies, err := appmiddleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		slog.Warn("ignoring invalid TRUSTED_PROXIES entries", "err", err)
	}
	codeRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, proxies...)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	healthH := handler.NewHealthHandler()
	profileH := handler.NewProfileHandler(deps.Profile, cfg.AvatarMaxBytes)
	emailH := handler.NewEmailConfirmHandler(deps.Verification)
	pwH := handler.NewPasswordRecoveryHandler(deps.Recovery)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/password-recovery/request", pwH.Request)
		r.With(codeRL.Limit).Post("/password-recovery/validate-code", pwH.ValidateCode)
		r.With(codeRL.Limit).Post("/password-recovery/reset", pwH.Reset)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/profile", profileH.Select)
			r.Post("/confirm-email/{action}", emailH.Action)

			// Owner or admin
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireOwnerOrRole("id", domain.RoleAdmin))

				r.Put("/users/{id}", profileH.Update)
				r.Delete("/users/{id}", profileH.Delete)
			})
		})
	})

	return r
}
