package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"futsal-sim-service/internal/domain"
	"futsal-sim-service/internal/http/middleware"
	"futsal-sim-service/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeFailure maps a classified failure onto its HTTP status and surfaces
// the reason verbatim.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	message := "internal error"
	kind := domain.FailureKind("")

	if f, ok := domain.AsFailure(err); ok {
		kind = f.Kind
		status = statusForKind(f.Kind)
		message = f.Reason
	}

	body := map[string]string{"error": message}
	if kind != "" {
		body["kind"] = string(kind)
	}
	if reqID := middleware.RequestIDFromContext(r.Context()); reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

func statusForKind(kind domain.FailureKind) int {
	switch kind {
	case domain.FailureNotFound:
		return http.StatusNotFound
	case domain.FailureInvalidState:
		return http.StatusConflict
	case domain.FailurePrecondition:
		return http.StatusUnprocessableEntity
	case domain.FailureRateLimited:
		return http.StatusTooManyRequests
	case domain.FailureValidation:
		return http.StatusBadRequest
	case domain.FailureConflict:
		return http.StatusServiceUnavailable
	case domain.FailureTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
