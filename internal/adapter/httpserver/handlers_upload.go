package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/piezorelay/internal/platform/errors"
)

// handleUpload accepts one reading and relays it to every connected subscriber.
func (s *Server) handleUpload(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return apperrors.BadRequestError("failed to read request body", err)
	}

	ack, err := s.ingress.Submit(c.Request().Context(), body)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, ack); err != nil {
		return fmt.Errorf("failed to write upload response: %w", err)
	}
	return nil
}
