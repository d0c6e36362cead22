package handler

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/accounts-server/internal/api/http/response"
	"github.com/dtroode/accounts-server/internal/apperrors"
	"github.com/dtroode/accounts-server/internal/logger"
)

// handleError writes the client-facing form of err. Errors outside the
// apperrors taxonomy are logged and reported as 500.
func handleError(w http.ResponseWriter, r *http.Request, lg *logger.Logger, err error) {
	if apiErr, ok := apperrors.As(err); ok && apiErr.Kind != apperrors.KindInternal {
		response.Text(w, apiErr.HTTPStatus(), apiErr.Message)
		return
	}

	lg.Error("HTTP handler: request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimw.GetReqID(r.Context()),
		"error", err.Error())
	response.InternalError(w)
}
