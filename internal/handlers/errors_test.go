package handlers

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"shortstory/internal/logger"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, logger.Nop(), 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}

	body := strings.TrimSpace(recorder.Body.String())
	if body != "Teapot" {
		t.Fatalf("expected body 'Teapot', got %q", body)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	recorder := httptest.NewRecorder()
	respondWithError(recorder, log, 500, "Internal server error", "", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].Message != "Internal server error" {
		t.Fatalf("expected log to use the user message, got %q", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if got, _ := fields["error"].(string); got != "boom" {
		t.Fatalf("expected error field 'boom', got %v", fields["error"])
	}
}

func TestRespondWithErrorSkipsLogWithoutError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	respondWithError(httptest.NewRecorder(), logger.FromZap(zap.New(core)), 400, "Bad", "", nil)

	if logs.Len() != 0 {
		t.Fatalf("expected no log entries, got %d", logs.Len())
	}
}
