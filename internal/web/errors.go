package web

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mesh-intelligence/contentdesk/internal/content"
	"github.com/mesh-intelligence/contentdesk/internal/form"
	"github.com/mesh-intelligence/contentdesk/internal/manager"
	"github.com/mesh-intelligence/contentdesk/internal/overview"
	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

var (
	errNotFound    = errors.New("resource not found")
	errInvalidBody = errors.New("invalid body")
)

// requestError marks a malformed request.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &requestError{err: err} }

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: "internal error"}

	var (
		validation *form.ValidationError
		save       *form.SaveError
		notice     *manager.Notice
		reqErr     *requestError
	)
	switch {
	case errors.As(err, &validation):
		status = http.StatusUnprocessableEntity
		resp = errorResponse{Error: validation.Message, Missing: validation.Missing}
	case errors.As(err, &save):
		status = http.StatusBadGateway
		resp.Error = save.Message
	case errors.As(err, &notice):
		status = http.StatusBadGateway
		resp.Error = notice.Message
	case errors.Is(err, overview.ErrLoad):
		status = http.StatusBadGateway
		resp.Error = overview.ErrLoad.Error()
	case errors.As(err, &reqErr), errors.Is(err, errInvalidBody):
		status = http.StatusBadRequest
		resp.Error = err.Error()
	case errors.Is(err, types.ErrUnknownKind), errors.Is(err, errNotFound),
		errors.Is(err, manager.ErrEntityNotFound), errors.Is(err, types.ErrorNotFound):
		status = http.StatusNotFound
		resp.Error = "resource not found"
	case errors.Is(err, manager.ErrNotReady):
		status = http.StatusServiceUnavailable
		resp.Error = err.Error()
	default:
		var op *content.OpError
		if errors.As(err, &op) {
			status = http.StatusBadGateway
			resp.Error = op.Error()
		}
	}
	return c.Status(status).JSON(resp)
}
