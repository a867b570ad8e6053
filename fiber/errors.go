package fiber

import (
	"errors"
	"fmt"

	"github.com/fwojciec/aptnotice"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ValidationError reports request fields that failed their struct tags.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func newValidationError(verrs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fmt.Sprintf("failed on '%s' tag", fe.Tag())
	}
	return &ValidationError{Fields: fields}
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	aptnotice.ECONFLICT: fiber.StatusConflict,
	aptnotice.EINVALID:  fiber.StatusBadRequest,
	aptnotice.ENOTFOUND: fiber.StatusNotFound,
	aptnotice.EINTERNAL: fiber.StatusInternalServerError,
}

// handleError renders errors returned by handlers as JSON.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var (
		verr *ValidationError
		ferr *fiber.Error
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Status: "error",
			Error:  verr.Error(),
			Fields: verr.Fields,
		})
	case errors.As(err, &ferr):
		return c.Status(ferr.Code).JSON(ErrorResponse{Status: "error", Error: ferr.Message})
	}

	code := aptnotice.ErrorCode(err)
	if code == aptnotice.EINTERNAL {
		s.logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"err", err,
		)
	}
	return c.Status(codes[code]).JSON(ErrorResponse{
		Status: "error",
		Error:  aptnotice.ErrorMessage(err),
	})
}
