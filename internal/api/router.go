package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ratiba-events/server/internal/api/handlers"
	"github.com/ratiba-events/server/internal/api/middleware"
	"github.com/ratiba-events/server/internal/audit"
	"github.com/ratiba-events/server/internal/auth"
	"github.com/ratiba-events/server/internal/config"
	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/participants"
	"github.com/ratiba-events/server/internal/domain/registrations"
	"github.com/ratiba-events/server/internal/metrics"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Config    config.Config
	Logger    zerolog.Logger
	Store     registrations.Store
	Health    handlers.HealthStore
	Version   string
	GitCommit string
	BuildDate string
}

// Router is the assembled HTTP handler. Close releases background work
// started for it.
type Router struct {
	http.Handler
	limiter *middleware.RateLimiter
}

func (r *Router) Close() {
	r.limiter.Stop()
}

func NewRouter(deps Deps) *Router {
	cfg := deps.Config
	env := cfg.Environment
	loc := cfg.Events.Location()

	eventsService := events.NewService(deps.Store.Events(), loc, deps.Logger)
	regService := registrations.NewService(deps.Store, loc, deps.Logger)
	partService := participants.NewService(deps.Store.Participants(), deps.Logger)

	eventsHandler := handlers.NewEventsHandler(eventsService, regService, env, cfg.Server.BaseURL)
	regHandler := handlers.NewRegistrationsHandler(regService, eventsService, env, cfg.Server.BaseURL)
	partHandler := handlers.NewParticipantsHandler(partService, env)
	auditLog := audit.NewLogger(deps.Logger)
	eventsHandler.Audit = auditLog
	regHandler.Audit = auditLog
	partHandler.Audit = auditLog
	health := handlers.NewHealthChecker(deps.Health, deps.Version, deps.GitCommit)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, env)

	public := chain(
		middleware.WithRateLimitTierHandler(middleware.TierPublic),
		limiter.Middleware,
		middleware.PublicRequestSize(),
	)
	organizer := chain(
		middleware.WithRateLimitTierHandler(middleware.TierOrganizer),
		limiter.Middleware,
		middleware.JWTAuth(jwtManager, env),
		middleware.OrganizerRequestSize(),
	)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", handlers.Readyz(deps.Health))
	mux.Handle("GET /health", health.Health())
	mux.Handle("GET /version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("GET /api/v1/events", public(http.HandlerFunc(eventsHandler.List)))
	mux.Handle("POST /api/v1/events", organizer(http.HandlerFunc(eventsHandler.Create)))
	mux.Handle("GET /api/v1/events/{id}", public(http.HandlerFunc(eventsHandler.Get)))
	mux.Handle("DELETE /api/v1/events/{id}", organizer(http.HandlerFunc(eventsHandler.Delete)))
	mux.Handle("GET /api/v1/events/{id}/participants", organizer(http.HandlerFunc(eventsHandler.Participants)))
	mux.Handle("POST /api/v1/events/{id}/registrations", public(http.HandlerFunc(regHandler.RegisterForEvent)))

	mux.Handle("POST /api/v1/register", public(http.HandlerFunc(regHandler.Register)))
	mux.Handle("POST /api/v1/rsvp", public(http.HandlerFunc(regHandler.RSVP)))
	mux.Handle("GET /api/v1/registrations/{id}", organizer(http.HandlerFunc(regHandler.Get)))
	mux.Handle("PATCH /api/v1/registrations/{id}", organizer(http.HandlerFunc(regHandler.UpdateStatus)))

	mux.Handle("PATCH /api/v1/participants", organizer(http.HandlerFunc(partHandler.Update)))
	mux.Handle("DELETE /api/v1/participants/{id}", organizer(http.HandlerFunc(partHandler.Delete)))

	handler := chain(
		middleware.CorrelationID(deps.Logger),
		middleware.Tracing,
		middleware.RequestLogging(deps.Logger),
		metrics.HTTPMiddleware,
		middleware.SecurityHeaders(cfg.IsProduction()),
	)(mux)

	return &Router{Handler: handler, limiter: limiter}
}

// chain applies middleware so the first argument is the outermost.
func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
