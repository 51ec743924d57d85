package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/reviewpulse/internal/dataset"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/config"
	"github.com/pscheid92/reviewpulse/internal/platform/correlation"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

func runErrorMiddleware(t *testing.T, handlerErr error) (*httptest.ResponseRecorder, apperrors.Response) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return handlerErr
	})
	require.NoError(t, handler(c), "the middleware handles the error instead of returning it")

	var resp apperrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestMiddlewareWithStructuredError(t *testing.T) {
	rec, resp := runErrorMiddleware(t, apperrors.Validation("invalid input").WithField("field", "kind"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
	assert.Equal(t, "kind", resp.Context["field"])
}

func TestMiddlewareWithStandardError(t *testing.T) {
	rec, resp := runErrorMiddleware(t, errors.New("standard error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, apperrors.TypeInternal, resp.Type)
	assert.NotContains(t, rec.Body.String(), "standard error", "causes never reach the client")
}

func TestMiddlewareWithNoError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
}

func TestMiddlewareMapsDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{"analysis not found", fmt.Errorf("get: %w", domain.ErrAnalysisNotFound), http.StatusNotFound, apperrors.TypeNotFound},
		{"column not found", domain.ErrColumnNotFound, http.StatusBadRequest, apperrors.TypeValidation},
		{"unknown kind", domain.ErrUnknownKind, http.StatusBadRequest, apperrors.TypeValidation},
		{"too many records", domain.ErrTooManyRecords, http.StatusBadRequest, apperrors.TypeValidation},
		{"empty csv", dataset.ErrEmptyFile, http.StatusBadRequest, apperrors.TypeValidation},
		{"store unavailable", domain.ErrStoreUnavailable, http.StatusServiceUnavailable, apperrors.TypeUnavailable},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, apperrors.TypeTooLarge},
		{"external", apperrors.External("upstream failed", errors.New("timeout")), http.StatusBadGateway, apperrors.TypeExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := runErrorMiddleware(t, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, resp.Type)
		})
	}
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		httpErr    *echo.HTTPError
		wantType   apperrors.ErrorType
		wantStatus int
	}{
		{"bad request", echo.NewHTTPError(http.StatusBadRequest, "bad request"), apperrors.TypeValidation, http.StatusBadRequest},
		{"not found", echo.ErrNotFound, apperrors.TypeNotFound, http.StatusNotFound},
		{"method not allowed", echo.ErrMethodNotAllowed, apperrors.TypeValidation, http.StatusBadRequest},
		{"too large", echo.ErrStatusRequestEntityTooLarge, apperrors.TypeTooLarge, http.StatusRequestEntityTooLarge},
		{"unavailable", echo.NewHTTPError(http.StatusServiceUnavailable), apperrors.TypeUnavailable, http.StatusServiceUnavailable},
		{"internal", echo.NewHTTPError(http.StatusInternalServerError, "boom"), apperrors.TypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapHTTPError(tt.httpErr)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantStatus, err.HTTPStatus())
		})
	}
}

func TestWrapHTTPError_MessageFallback(t *testing.T) {
	cause := errors.New("underlying cause")
	httpErr := echo.NewHTTPError(http.StatusBadRequest, 12345).SetInternal(cause)

	err := wrapHTTPError(httpErr)

	assert.Equal(t, "Bad Request", err.Message)
	assert.Equal(t, cause, err.Cause)
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	var seen string
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := requestIDMiddleware(func(c echo.Context) error {
		seen, _ = correlation.ID(c.Request().Context())
		return nil
	})(c)

	require.NoError(t, err)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(correlation.Header))
}

func TestRequestID_AcceptsWellFormedIncoming(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(correlation.Header, "client-req-7")
	rec := serve(srv, req)

	assert.Equal(t, "client-req-7", rec.Header().Get(correlation.Header))

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(correlation.Header, "bad id\twith tab")
	rec = serve(srv, req)

	got := rec.Header().Get(correlation.Header)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "bad id\twith tab", got)
}

func TestUnknownRoute_RendersStructuredNotFound(t *testing.T) {
	srv := newTestServer(t, &mockAppService{})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"not_found"`)
}

func TestBodyLimit_RejectsOversizedBody(t *testing.T) {
	srv := newTestServer(t, &mockAppService{}, withConfig(func(cfg *config.Config) { cfg.MaxUploadBytes = 64 }))

	req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(`{"items":[{"text":"`+strings.Repeat("a", 100)+`"}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(srv, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"too_large"`)
}

func TestRecoveredPanic_RendersInternalError(t *testing.T) {
	srv := newTestServer(t, &mockAppService{
		listAnalysesFn: func(context.Context, int, int) ([]domain.AnalysisSummary, error) { panic("boom") },
	})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/analyses", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"internal"`)
}
