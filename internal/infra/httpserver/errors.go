package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bryanwahyu/inspecta/internal/application"
	domai "github.com/bryanwahyu/inspecta/internal/domain/ai"
)

const internalError = "internal error"

// classify maps an error to a status and the message the client sees.
// Storage failures never leak their text.
func classify(err error) (int, string) {
	var input *application.InputError
	switch {
	case errors.As(err, &input):
		return http.StatusBadRequest, input.Msg
	case eris.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domai.ErrServiceUnavailable):
		return http.StatusInternalServerError, "ai service is not configured"
	case errors.Is(err, domai.ErrRemoteCallFailed):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, internalError
	}
}

func logError(req *http.Request, status int, err error) {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", append(fields, zap.String("error", eris.ToString(err, true)))...)
		return
	}
	zap.L().Debug("request rejected", append(fields, zap.Error(err))...)
}

func invalidBody(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return application.Invalid("request body exceeds %d bytes", tooLarge.Limit)
	}
	return application.Invalid("invalid request body: %v", err)
}
