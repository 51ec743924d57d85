package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/reviewpulse/internal/dataset"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

const uploadField = "file"

type upload struct {
	filename string
	table    *dataset.Table
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// readUpload parses the CSV in the "file" form field. Files ending in .tsv are
// read tab-separated.
func (s *Server) readUpload(c echo.Context) (*upload, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, tooLarge(maxBytes.Limit)
		}
		return nil, apperrors.Validation("a CSV file is required in the \"file\" field").WithCause(err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.Internal("failed to open upload", err)
	}
	defer func() { _ = f.Close() }()

	opts := dataset.CSVOptions{MaxRows: s.config.MaxRecords}
	if strings.EqualFold(filepath.Ext(fh.Filename), ".tsv") {
		opts.Comma = '\t'
	}

	table, err := dataset.ReadCSV(f, opts)
	if err != nil {
		if appErr := toAppError(err); appErr.ClientFault() {
			return nil, appErr.WithField("file", fh.Filename)
		}
		return nil, apperrors.Validation(fmt.Sprintf("invalid CSV: %v", err)).
			WithField("file", fh.Filename).
			WithCause(err)
	}

	if s.httpMetrics != nil {
		s.httpMetrics.ObserveUpload(fh.Size)
	}

	return &upload{filename: fh.Filename, table: table}, nil
}
