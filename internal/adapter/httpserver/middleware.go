package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/reviewpulse/internal/dataset"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/correlation"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

// requestIDMiddleware accepts a well-formed incoming X-Request-ID or assigns a
// new one, and echoes it back.
func requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.Sanitize(c.Request().Header.Get(correlation.Header))
		c.Response().Header().Set(correlation.Header, id)

		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// bodyLimit rejects request bodies larger than limit bytes.
func bodyLimit(limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.ContentLength > limit {
				return tooLarge(limit)
			}
			req.Body = http.MaxBytesReader(c.Response(), req.Body, limit)
			return next(c)
		}
	}
}

func tooLarge(limit int64) *apperrors.Error {
	return apperrors.TooLarge("request body too large").WithField("limit_bytes", limit)
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			return writeError(c, err)
		}
	}
}

// handleHTTPError renders errors that escape the middleware chain, such as
// recovered panics.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if werr := writeError(c, err); werr != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to write error response", "error", werr)
	}
}

func writeError(c echo.Context, err error) error {
	appErr := toAppError(err)
	logError(c, appErr)

	if c.Response().Committed {
		return nil
	}
	if err := c.JSON(appErr.HTTPStatus(), appErr.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}

// toAppError maps domain sentinels and echo errors onto typed errors. An error
// that already carries a type keeps it.
func toAppError(err error) *apperrors.Error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return tooLarge(maxBytes.Limit)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return wrapHTTPError(httpErr)
	}

	switch {
	case errors.Is(err, domain.ErrAnalysisNotFound):
		return apperrors.NotFound("analysis not found").WithCause(err)
	case errors.Is(err, domain.ErrColumnNotFound),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrTooManyRecords),
		errors.Is(err, dataset.ErrEmptyFile):
		return apperrors.Validation(err.Error()).WithCause(err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return apperrors.Unavailable("analysis store temporarily unavailable", err)
	}

	return apperrors.As(err)
}

func wrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var err *apperrors.Error
	switch {
	case httpErr.Code == http.StatusNotFound:
		err = apperrors.NotFound(message)
	case httpErr.Code == http.StatusRequestEntityTooLarge:
		err = apperrors.TooLarge(message)
	case httpErr.Code == http.StatusServiceUnavailable:
		err = apperrors.Unavailable(message, nil)
	case httpErr.Code >= 400 && httpErr.Code < 500:
		err = apperrors.Validation(message)
	default:
		err = apperrors.Internal(message, nil)
	}

	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}
	return err
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}
	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	ctx := c.Request().Context()
	if err.ClientFault() {
		slog.InfoContext(ctx, "Client error", attrs...)
		return
	}

	if err.Cause != nil {
		attrs = append(attrs, "cause", err.Cause)
	}
	switch err.Type {
	case apperrors.TypeUnavailable:
		slog.WarnContext(ctx, "Dependency unavailable", attrs...)
	case apperrors.TypeExternal:
		slog.ErrorContext(ctx, "External service error", attrs...)
	default:
		slog.ErrorContext(ctx, "Internal error", attrs...)
	}
}
