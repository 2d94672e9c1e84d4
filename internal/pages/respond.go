package pages

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hobbyhub/profile-client/internal/api"
	"github.com/hobbyhub/profile-client/internal/store"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type validationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

// decodeAndValidate reads a JSON body into v and checks its validate tags.
// It answers 400 and returns false when either step fails.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	err := h.validate.Struct(v)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		h.log.Error().Err(err).Msg("Unexpected error during validation")
		writeError(w, http.StatusInternalServerError, "internal validation error")
		return false
	}
	writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "validation failed",
		Details: formatValidationErrors(validationErrors),
	})
	return false
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			details[fe.Field()] = "is required"
		case "oneof":
			details[fe.Field()] = "must be one of: " + fe.Param()
		default:
			details[fe.Field()] = "failed " + fe.Tag() + " check"
		}
	}
	return details
}

// statusFor maps a store error to the status the page answers with.
// Client errors from the API pass through; anything else upstream is a
// bad gateway.
func statusFor(err error) int {
	if errors.Is(err, store.ErrNoSession) {
		return http.StatusUnauthorized
	}
	switch api.KindOf(err) {
	case api.KindInvalid:
		return http.StatusBadRequest
	case api.KindStatus:
		if s := api.StatusOf(err); s >= 400 && s < 500 {
			return s
		}
		return http.StatusBadGateway
	case api.KindTransport, api.KindDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
