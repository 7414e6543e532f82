package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "dormitory/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.NotFoundWithID("Room", "1"), http.StatusNotFound, apperrors.CodeNotFound},
		{"validation", apperrors.Validation("bad room", nil), http.StatusBadRequest, apperrors.CodeValidation},
		{"conflict", apperrors.Conflict("room is already booked"), http.StatusConflict, apperrors.CodeConflict},
		{"plain error", errors.New("mongo exploded"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteError(w, tt.err); err != nil {
				t.Fatalf("WriteError() returned %v", err)
			}

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body apperrors.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
			if strings.Contains(body.Message, "mongo exploded") {
				t.Errorf("internal error text leaked: %q", body.Message)
			}
		})
	}
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()
	if err := WriteCreated(w, map[string]string{"roomName": "Sampaguita"}); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"roomName":"Sampaguita"`) {
		t.Errorf("expected bare resource body, got %s", w.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		RoomName string `json:"roomName"`
	}

	if err := DecodeJSON(strings.NewReader(`{"roomName":"A"}`), &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.RoomName != "A" {
		t.Errorf("RoomName = %q", dst.RoomName)
	}

	for _, body := range []string{"", "{not json"} {
		err := DecodeJSON(strings.NewReader(body), &dst)
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("body %q: expected INVALID_INPUT, got %v", body, err)
		}
	}
}
