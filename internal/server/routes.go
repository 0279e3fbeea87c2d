package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartroute/internal/handlers"
	"smartroute/internal/middleware"
	"smartroute/internal/render"
	"smartroute/internal/router"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Router   *router.Router
	Renderer *render.Renderer
	Gatherer prometheus.Gatherer
	Checks   []handlers.Check
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg.IsAuthEnabled())

	appHandler := handlers.NewAppHandler(deps.Router, deps.Renderer, s.Cfg, s.logger)
	probeHandler := handlers.NewProbeHandler(deps.Checks...)

	// Probes and metrics are never behind auth
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	if deps.Gatherer != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if s.Cfg.IsAuthEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, s.logger)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		s.logger.Info("OIDC authentication is disabled. Set OIDC_ISSUER to enable.")
	}

	s.App.Get("/", authMiddleware.RequireAuth, appHandler.Index)
	s.App.Get("/status", authMiddleware.RequireAuth, appHandler.Status)
	s.App.Get("/route/stop", authMiddleware.RequireAuth, appHandler.StopRow)
	s.App.Post("/mode/:view", authMiddleware.RequireAuth, appHandler.SelectMode)
	s.App.Post("/back", authMiddleware.RequireAuth, appHandler.Back)
	s.App.Post("/prospect", authMiddleware.RequireAuth, s.submitLimiter, appHandler.SubmitProspect)
	s.App.Post("/route", authMiddleware.RequireAuth, s.submitLimiter, appHandler.SubmitRoute)

	return nil
}
