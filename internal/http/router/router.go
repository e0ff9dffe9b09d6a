package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kedorion/careers-api/internal/config"
	"github.com/kedorion/careers-api/internal/http/handler"
	"github.com/kedorion/careers-api/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	rateLimiter        *middleware.RateLimiter
	applicationHandler *handler.ApplicationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	rateLimiter *middleware.RateLimiter,
	applicationHandler *handler.ApplicationHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		rateLimiter:        rateLimiter,
		applicationHandler: applicationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Landing page served explicitly so POST /apply is never shadowed by a
	// static mount
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, rt.cfg.App.IndexPath)
	})

	r.Post("/apply", rt.applicationHandler.Apply)

	return r
}
