package server

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mscno/collab/server/engine"
)

var errNoSession = errors.New("missing or invalid session")

// errorCode maps engine error kinds to Connect codes.
func errorCode(err error) connect.Code {
	switch {
	case errors.Is(err, errNoSession):
		return connect.CodeUnauthenticated
	case errors.Is(err, engine.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, engine.ErrUnauthorized):
		return connect.CodePermissionDenied
	case errors.Is(err, engine.ErrApplicationsClosed), errors.Is(err, engine.ErrInvalidTransition):
		return connect.CodeFailedPrecondition
	case errors.Is(err, engine.ErrInvalidInput):
		return connect.CodeInvalidArgument
	case errors.Is(err, engine.ErrDependencyFailure):
		return connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

func (s *Server) connectError(ctx context.Context, procedure string, err error) *connect.Error {
	code := errorCode(err)
	switch code {
	case connect.CodeInternal, connect.CodeUnavailable:
		s.logger.ErrorContext(ctx, "procedure failed", "procedure", procedure, "code", code.String(), "error", err)
	default:
		s.logger.DebugContext(ctx, "procedure rejected", "procedure", procedure, "code", code.String(), "error", err)
	}
	return connect.NewError(code, err)
}

// httpStatus is the REST counterpart of errorCode.
func httpStatus(err error) int {
	switch errorCode(err) {
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	case connect.CodeFailedPrecondition:
		return http.StatusConflict
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
