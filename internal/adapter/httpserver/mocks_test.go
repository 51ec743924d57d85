package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/pscheid92/reviewpulse/internal/app"
	"github.com/pscheid92/reviewpulse/internal/dataset"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	classifyFn      func(ctx context.Context, req app.ClassifyRequest) (*app.ClassifyResult, error)
	analyzeTextFn   func(ctx context.Context, text string) (*app.TextAnalysis, error)
	summarizeFn     func(ctx context.Context, req app.SummarizeRequest) (*app.Narrative, error)
	analyzeFn       func(ctx context.Context, req app.AnalyzeRequest) (*domain.Analysis, error)
	analyzeTableFn  func(ctx context.Context, name string, source domain.Source, t *dataset.Table, column, kind string) (*domain.Analysis, error)
	analyzeSampleFn func(ctx context.Context, column, kind string) (*domain.Analysis, error)
	previewFn       func(ctx context.Context, t *dataset.Table, column, kind string, n int) (*app.Preview, error)
	previewSampleFn func(ctx context.Context, column, kind string, n int) (*app.Preview, error)
	getAnalysisFn   func(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	listAnalysesFn  func(ctx context.Context, limit, offset int) ([]domain.AnalysisSummary, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) error
}

var errNotImplemented = errors.New("not implemented")

func (m *mockAppService) Classify(ctx context.Context, req app.ClassifyRequest) (*app.ClassifyResult, error) {
	if m.classifyFn != nil {
		return m.classifyFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) AnalyzeText(ctx context.Context, text string) (*app.TextAnalysis, error) {
	if m.analyzeTextFn != nil {
		return m.analyzeTextFn(ctx, text)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) Summarize(ctx context.Context, req app.SummarizeRequest) (*app.Narrative, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) Analyze(ctx context.Context, req app.AnalyzeRequest) (*domain.Analysis, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) AnalyzeTable(ctx context.Context, name string, source domain.Source, t *dataset.Table, column, kind string) (*domain.Analysis, error) {
	if m.analyzeTableFn != nil {
		return m.analyzeTableFn(ctx, name, source, t, column, kind)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) AnalyzeSample(ctx context.Context, column, kind string) (*domain.Analysis, error) {
	if m.analyzeSampleFn != nil {
		return m.analyzeSampleFn(ctx, column, kind)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) Preview(ctx context.Context, t *dataset.Table, column, kind string, n int) (*app.Preview, error) {
	if m.previewFn != nil {
		return m.previewFn(ctx, t, column, kind, n)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) PreviewSample(ctx context.Context, column, kind string, n int) (*app.Preview, error) {
	if m.previewSampleFn != nil {
		return m.previewSampleFn(ctx, column, kind, n)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	if m.getAnalysisFn != nil {
		return m.getAnalysisFn(ctx, id)
	}
	return nil, domain.ErrAnalysisNotFound
}

func (m *mockAppService) ListAnalyses(ctx context.Context, limit, offset int) ([]domain.AnalysisSummary, error) {
	if m.listAnalysesFn != nil {
		return m.listAnalysesFn(ctx, limit, offset)
	}
	return []domain.AnalysisSummary{}, nil
}

func (m *mockAppService) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Test server ---

type testServerOption func(*testServerOptions)

type testServerOptions struct {
	cfg          *config.Config
	healthChecks []HealthCheck
}

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(o *testServerOptions) { o.healthChecks = checks }
}

func withConfig(mutate func(*config.Config)) testServerOption {
	return func(o *testServerOptions) { mutate(o.cfg) }
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:         "test",
		Port:           "0",
		MaxUploadBytes: 1 << 20,
		MaxRecords:     1000,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

func newTestServer(t *testing.T, app appService, opts ...testServerOption) *Server {
	t.Helper()
	o := &testServerOptions{cfg: testConfig()}
	for _, opt := range opts {
		opt(o)
	}
	return NewServer(o.cfg, app, nil, nil, o.healthChecks)
}

// serve runs req through the full middleware chain.
func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}
