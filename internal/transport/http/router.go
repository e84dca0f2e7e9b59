package http

import (
	"context"
	"net/http"

	"github.com/endpoint-nf-store/internal/application/notification"
	"github.com/endpoint-nf-store/internal/config"
	jwtinfra "github.com/endpoint-nf-store/internal/infrastructure/jwt"
	"github.com/endpoint-nf-store/internal/transport/http/handler"
	appmiddleware "github.com/endpoint-nf-store/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	NotificationRepo      NotificationStore
	NotificationByAppRepo NotificationIndex
	EndpointByAppRepo     EndpointRegistry
	JWTProvider           *jwtinfra.Provider
}

// NewRouter builds and returns the application router. Background work started
// for the router stops when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(log.Named("access")))
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Metrics)
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
		log.Warn("JWT provider not configured, read and send routes are unauthenticated and admin routes are closed")
		authMw = func(next http.Handler) http.Handler { return next }
	}
	// Without a provider no request carries claims, so admin routes answer 401.
	adminOnly := appmiddleware.RequireRole(appmiddleware.RoleAdmin)

	writeRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst, ctx.Done())

	notifSvc := notification.NewService(deps.NotificationRepo, deps.NotificationByAppRepo, deps.EndpointByAppRepo)

	healthH := handler.NewHealthHandler()
	notifH := handler.NewNotificationHandler(notifSvc, log)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/notifications/{id}", notifH.Get)
			r.Get("/endpoints/{keyHash}/notifications", notifH.ListByEndpoint)
			r.With(writeRL.Limit).Post("/notifications", notifH.Send)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly, writeRL.Limit)

				r.Delete("/endpoints/{keyHash}/notifications", notifH.DeleteByEndpoint)
				r.Delete("/applications/{appID}/notifications", notifH.DeleteByApplication)
				r.Put("/applications/{appID}/endpoints/{keyHash}", notifH.RegisterEndpoint)
				r.Delete("/applications/{appID}/endpoints/{keyHash}", notifH.UnregisterEndpoint)
			})
		})
	})

	return r
}
