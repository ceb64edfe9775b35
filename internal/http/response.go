package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/vladimiradmaev/protein-tracker/internal/errors"
)

type errorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps an error type onto its HTTP status
func statusFor(errType apperrors.ErrorType) int {
	switch errType {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypePermission:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError renders err using only its public message
func writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, apperrors.MsgInternal)
		return
	}

	status := statusFor(appErr.Type)
	resp := errorResponse{Error: appErr.PublicMessage()}
	if status == http.StatusTooManyRequests {
		resp.RetryAfter = appErr.RetryAfterSeconds()
		w.Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
	}
	writeJSON(w, status, resp)
}
