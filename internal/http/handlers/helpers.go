package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"gridpulse/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the core error taxonomy to HTTP statuses: validation
// is the caller's fault, not-found is an empty result, persistence is
// retryable.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": verr.Error(),
			"field": verr.Field,
		})
		return
	}

	var nferr *service.NotFoundError
	if errors.As(err, &nferr) {
		writeError(w, http.StatusNotFound, nferr.Error())
		return
	}

	var perr *service.PersistenceError
	if errors.As(err, &perr) {
		logger.Error("storage operation failed", zap.String("op", perr.Op), zap.Error(perr))
		writeError(w, http.StatusServiceUnavailable, "storage temporarily unavailable, retry the request")
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
