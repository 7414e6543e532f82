package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "dormitory/pkg/errors"
)

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err as an AppError body. Errors that are not AppErrors are
// reported as internal errors without exposing their text.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteJSON(w, appErr.StatusCode(), appErr.Response())
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// DecodeJSON reads a single JSON document from body into dst.
func DecodeJSON(body io.Reader, dst any) error {
	if body == nil {
		return apperrors.InvalidInput("Request body is required")
	}
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is required")
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
