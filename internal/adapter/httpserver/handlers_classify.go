package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/reviewpulse/internal/app"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

func (s *Server) registerClassifyRoutes(api *echo.Group) {
	api.POST("/classify", s.handleClassify)
	api.POST("/classify/text", s.handleClassifyText)
	api.POST("/summarize", s.handleSummarize)
}

func (s *Server) handleClassify(c echo.Context) error {
	var req app.ClassifyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := s.app.Classify(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, res)
}

type classifyTextRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleClassifyText(c echo.Context) error {
	var req classifyTextRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := s.app.AnalyzeText(c.Request().Context(), req.Text)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, res)
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req app.SummarizeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := s.app.Summarize(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, res)
}

// bindJSON decodes the request body. Decoding problems are the client's fault.
func bindJSON(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		if appErr := toAppError(err); appErr.Type == apperrors.TypeTooLarge {
			return appErr
		}
		return apperrors.Validation("invalid request body").WithCause(err)
	}
	return nil
}

func sendJSON(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
