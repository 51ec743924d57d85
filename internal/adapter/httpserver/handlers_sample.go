package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) registerSampleRoutes(api *echo.Group) {
	api.GET("/sample", s.handleSamplePreview)
	api.POST("/preview", s.handleUploadPreview)
}

func (s *Server) handleSamplePreview(c echo.Context) error {
	n, err := queryInt(c, "n")
	if err != nil {
		return err
	}

	preview, err := s.app.PreviewSample(c.Request().Context(), c.QueryParam("column"), c.QueryParam("kind"), n)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, preview)
}

func (s *Server) handleUploadPreview(c echo.Context) error {
	upload, err := s.readUpload(c)
	if err != nil {
		return err
	}
	n, err := formInt(c, "n")
	if err != nil {
		return err
	}

	preview, err := s.app.Preview(c.Request().Context(), upload.table, c.FormValue("column"), c.FormValue("kind"), n)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, preview)
}
