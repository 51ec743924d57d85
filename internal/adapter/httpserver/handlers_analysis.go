package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/reviewpulse/internal/app"
	"github.com/pscheid92/reviewpulse/internal/domain"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

func (s *Server) registerAnalysisRoutes(api *echo.Group) {
	api.POST("/analyses", s.handleCreateAnalysis)
	api.GET("/analyses", s.handleListAnalyses)
	api.GET("/analyses/:id", s.handleGetAnalysis)
	api.DELETE("/analyses/:id", s.handleDeleteAnalysis)
}

type createAnalysisRequest struct {
	Name    string          `json:"name"`
	Source  domain.Source   `json:"source"`
	Column  string          `json:"column"`
	Kind    string          `json:"kind"`
	Records []domain.Record `json:"records"`
}

// handleCreateAnalysis accepts a multipart CSV upload, a JSON batch of records,
// or a JSON request naming the built-in sample.
func (s *Server) handleCreateAnalysis(c echo.Context) error {
	if isMultipart(c) {
		return s.handleUploadAnalysis(c)
	}

	var req createAnalysisRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var (
		analysis *domain.Analysis
		err      error
	)
	switch req.Source {
	case domain.SourceSample:
		analysis, err = s.app.AnalyzeSample(ctx, req.Column, req.Kind)
	case "", domain.SourceInline:
		analysis, err = s.app.Analyze(ctx, app.AnalyzeRequest{
			Name:    req.Name,
			Source:  domain.SourceInline,
			Column:  req.Column,
			Kind:    req.Kind,
			Records: req.Records,
		})
	default:
		return apperrors.Validationf("unsupported source %q", req.Source).
			WithField("allowed", []domain.Source{domain.SourceInline, domain.SourceSample})
	}
	if err != nil {
		return err
	}

	return sendJSON(c, http.StatusCreated, analysis)
}

func (s *Server) handleUploadAnalysis(c echo.Context) error {
	upload, err := s.readUpload(c)
	if err != nil {
		return err
	}

	name := c.FormValue("name")
	if name == "" {
		name = upload.filename
	}

	analysis, err := s.app.AnalyzeTable(c.Request().Context(), name, domain.SourceUpload,
		upload.table, c.FormValue("column"), c.FormValue("kind"))
	if err != nil {
		return err
	}

	return sendJSON(c, http.StatusCreated, analysis)
}

func (s *Server) handleListAnalyses(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	summaries, err := s.app.ListAnalyses(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	return sendJSON(c, http.StatusOK, map[string]any{
		"analyses": summaries,
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) handleGetAnalysis(c echo.Context) error {
	id, err := analysisID(c)
	if err != nil {
		return err
	}

	analysis, err := s.app.GetAnalysis(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, analysis)
}

func (s *Server) handleDeleteAnalysis(c echo.Context) error {
	id, err := analysisID(c)
	if err != nil {
		return err
	}

	if err := s.app.DeleteAnalysis(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func analysisID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid analysis id").WithField("id", raw)
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	return intParam(name, c.QueryParam(name))
}

func formInt(c echo.Context, name string) (int, error) {
	return intParam(name, c.FormValue(name))
}

// intParam parses an optional integer parameter; a missing one is zero.
func intParam(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validationf("%s must be an integer", name).WithField(name, raw)
	}
	return v, nil
}
