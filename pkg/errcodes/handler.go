package errcodes

import (
	"context"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

var (
	errInternal = &Error{http.StatusInternalServerError, "Internal Server Error", "internal_server_error"}
	errTimeout  = &Error{http.StatusServiceUnavailable, "Request timed out", "request_timeout"}
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is the Echo HTTPErrorHandler. Anything that isn't an *Error, an
// echo.HTTPError or a deadline is rendered as a bare 500. Broken pipes and
// resets from a departed client are only logged.
func (h *Handler) Handle(err error, c echo.Context) {
	log := logger.FromEchoContext(c)
	e := classify(err)
	if e == errInternal && errutils.IsIgnorableErr(err) {
		log.Err(err).Warn("client went away")
		return
	}
	if c.Response().Committed {
		return
	}

	if e == errInternal {
		log.Err(err).Error("server error")
	}

	body := map[string]interface{}{
		"error": map[string]interface{}{
			"code":        e.Code,
			"message":     e.Message,
			"status_code": e.HTTPCode,
		},
	}
	if err := c.JSON(e.HTTPCode, body); err != nil {
		log.Err(errors.WithStack(err)).Error("failed to write error response")
	}
}

func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errTimeout
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok || msg == "" {
			msg = http.StatusText(he.Code)
		}
		return &Error{HTTPCode: he.Code, Message: msg, Code: strcase.ToSnake(msg)}
	}

	return errInternal
}
