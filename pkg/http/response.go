package http

import (
	"encoding/json"
	"net/http"

	apperrors "cohort/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err with the status of the AppError it wraps. Anything else
// becomes a generic 500 so internal causes never reach the client.
func WriteError(w http.ResponseWriter, err error) error {
	statusCode := http.StatusInternalServerError
	errResp := ErrorResponse{
		Error: "Internal server error",
		Code:  apperrors.CodeInternal,
	}

	if apperrors.IsAppError(err) {
		e := apperrors.AsAppError(err)
		if e.StatusCode() != 0 {
			statusCode = e.StatusCode()
		}
		errResp = ErrorResponse{
			Error:   e.Message,
			Code:    e.Code,
			Details: e.Details,
		}
	}

	return WriteJSON(w, statusCode, errResp)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteAccepted(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusAccepted, SuccessResponse{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
