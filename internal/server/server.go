package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"github.com/vzahanych/weather-lookup/internal/server/handlers"
	"github.com/vzahanych/weather-lookup/internal/server/middlewares"
	"github.com/vzahanych/weather-lookup/internal/wmo"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
	"go.uber.org/zap"
)

type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	server   *http.Server
	pipeline *lookup.Pipeline
	logger   *zap.Logger
	tele     *telemetry.Telemetry
}

func NewServer(cfg *config.Config, pipeline *lookup.Pipeline, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	httpMetrics := middlewares.NewMetricsMiddleware(logger)

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger, true, "/health/live", "/metrics"))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(httpMetrics.Handler())

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		pipeline: pipeline,
		logger:   logger,
		tele:     tele,
	}

	s.setupRoutes(httpMetrics)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	return s
}

func (s *Server) setupRoutes(httpMetrics *middlewares.MetricsMiddleware) {
	metrics := handlers.NewMetricsHandler(s.logger, httpMetrics)
	s.pipeline.SetMetricsRecorder(metrics)

	searchers := map[string]handlers.Searcher{
		wmo.LangEnglish: s.pipeline.WithCodes(wmo.For(wmo.LangEnglish)),
		wmo.LangChinese: s.pipeline.WithCodes(wmo.For(wmo.LangChinese)),
	}
	weather := handlers.NewWeatherHandler(searchers, s.cfg.Lookup.Language, s.logger)

	// Business endpoints
	s.engine.GET("/weather", weather.GetWeather)
	s.engine.GET("/weather/codes", weather.GetCodes)

	health := handlers.NewHealthHandler(s.logger, s.cfg.Version, map[string]handlers.ReadinessCheck{
		"geocoding_api_key": func() string {
			if s.cfg.Geocoding.APIKey == "" {
				return "geocoding.api_key is not configured"
			}
			return ""
		},
	})
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	s.engine.GET("/metrics", metrics.ServeMetrics)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
