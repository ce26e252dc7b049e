package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/riskdesk/internal/api/response"
	"github.com/kiranshivaraju/riskdesk/internal/store"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// writeServiceError maps pipeline and store errors onto the error envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	var formatErr *models.FormatError
	var violation *models.ContractViolationError
	switch {
	case errors.As(err, &formatErr):
		response.ErrorWithSuggestion(w, http.StatusUnsupportedMediaType,
			"UNSUPPORTED_FORMAT", formatErr.Error(), formatErr.Suggestion)
	case errors.Is(err, models.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, models.ErrUnauthorized):
		response.Error(w, http.StatusForbidden, "UNAUTHORIZED_RESOURCE", err.Error(), nil)
	case errors.Is(err, models.ErrProviderUnavailable):
		response.ErrorWithSuggestion(w, http.StatusServiceUnavailable,
			"AI_PROVIDER_UNAVAILABLE", err.Error(),
			"Send a provider API key in the X-AI-API-Key header or configure one on the server.")
	case errors.Is(err, models.ErrInferenceTimeout):
		response.ErrorWithSuggestion(w, http.StatusGatewayTimeout,
			"AI_INFERENCE_TIMEOUT", "AI analysis took too long and was cancelled",
			"Upload fewer or smaller documents, or ask the operator to raise AI_INFERENCE_TIMEOUT_SECS.")
	case errors.As(err, &violation):
		response.ErrorDetail(w, http.StatusBadGateway,
			"AI_CONTRACT_VIOLATION", violation.Error(),
			"Retry the request. If it keeps failing, switch to a model that supports JSON output.",
			map[string]string{"provider": violation.Provider, "raw_output": violation.Raw})
	case errors.Is(err, models.ErrProviderContractViolation):
		response.ErrorWithSuggestion(w, http.StatusBadGateway,
			"AI_CONTRACT_VIOLATION", err.Error(),
			"Retry the request. If it keeps failing, switch to a model that supports JSON output.")
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found", nil)
	default:
		slog.Error("request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
