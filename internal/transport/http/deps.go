package http

import (
	"github.com/go-account-api/internal/application/profile"
	"github.com/go-account-api/internal/application/recovery"
	"github.com/go-account-api/internal/application/verification"
	jwtinfra "github.com/go-account-api/internal/infrastructure/jwt"
	appmiddleware "github.com/go-account-api/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds the services and infrastructure the router wires into handlers.
type Deps struct {
	Profile      profile.Service
	Verification verification.Service
	Recovery     recovery.Service
	JWTProvider  *jwtinfra.Provider
	Metrics      *appmiddleware.HTTPMetrics
	Gatherer     prometheus.Gatherer // served on /metrics; nil uses the default registry
}
