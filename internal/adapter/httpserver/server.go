package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/app"
	"github.com/pscheid92/reviewpulse/internal/dataset"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/config"
)

type appService interface {
	Classify(ctx context.Context, req app.ClassifyRequest) (*app.ClassifyResult, error)
	AnalyzeText(ctx context.Context, text string) (*app.TextAnalysis, error)
	Summarize(ctx context.Context, req app.SummarizeRequest) (*app.Narrative, error)
	Analyze(ctx context.Context, req app.AnalyzeRequest) (*domain.Analysis, error)
	AnalyzeTable(ctx context.Context, name string, source domain.Source, t *dataset.Table, column, kind string) (*domain.Analysis, error)
	AnalyzeSample(ctx context.Context, column, kind string) (*domain.Analysis, error)
	Preview(ctx context.Context, t *dataset.Table, column, kind string, n int) (*app.Preview, error)
	PreviewSample(ctx context.Context, column, kind string, n int) (*app.Preview, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	ListAnalyses(ctx context.Context, limit, offset int) ([]domain.AnalysisSummary, error)
	DeleteAnalysis(ctx context.Context, id uuid.UUID) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app            appService
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	healthChecks   []HealthCheck
	startTime      time.Time
}

// NewServer builds the HTTP surface. httpMetrics and metricsHandler may be nil,
// in which case request metrics and /metrics are not exposed.
func NewServer(cfg *config.Config, app appService, httpMetrics *metrics.HTTPMetrics, metricsHandler http.Handler, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         cfg,
		app:            app,
		httpMetrics:    httpMetrics,
		metricsHandler: metricsHandler,
		healthChecks:   healthChecks,
		startTime:      time.Now(),
	}
	e.HTTPErrorHandler = srv.handleHTTPError

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP lets tests drive the full middleware chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
