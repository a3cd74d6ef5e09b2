package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		userMsg string
	}{
		{"not found", http.StatusNotFound, "Word not found"},
		{"conflict", http.StatusConflict, "No active review session"},
		{"unauthorized", http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			respondWithError(recorder, tt.status, tt.userMsg, "", nil)

			if recorder.Code != tt.status {
				t.Errorf("status = %d, want %d", recorder.Code, tt.status)
			}
			if body := strings.TrimSpace(recorder.Body.String()); body != tt.userMsg {
				t.Errorf("body = %q, want %q", body, tt.userMsg)
			}
		})
	}
}

func TestRespondWithErrorLogsDetailNotUserMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("dial tcp: connection refused")

	respondWithError(recorder, http.StatusInternalServerError,
		"Failed to save word", "word repository update failed", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "word repository update failed") {
		t.Errorf("log = %q, want the internal detail message", logOutput)
	}
	if !strings.Contains(logOutput, "connection refused") {
		t.Errorf("log = %q, want the wrapped error", logOutput)
	}

	// The client sees only the user-facing message
	if body := recorder.Body.String(); strings.Contains(body, "connection refused") {
		t.Errorf("body = %q, leaked internal error detail", body)
	}
}

func TestRespondWithErrorNilErrorSkipsLog(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	respondWithError(httptest.NewRecorder(), http.StatusBadRequest, "Missing word text", "", nil)

	if buf.Len() != 0 {
		t.Errorf("log = %q, want empty for nil error", buf.String())
	}
}

func TestRespondWithJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithJSON(recorder, http.StatusCreated, map[string]string{"id": "w1", "text": "serendipity"})

	if recorder.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", recorder.Code, http.StatusCreated)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var payload map[string]string
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if payload["text"] != "serendipity" {
		t.Errorf("payload = %v, want text serendipity", payload)
	}
}

func TestRespondWithJSONNilPayloadWritesNoBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithJSON(recorder, http.StatusNoContent, nil)

	if recorder.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", recorder.Code, http.StatusNoContent)
	}
	if recorder.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", recorder.Body.String())
	}
}
