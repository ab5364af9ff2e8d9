package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/notification/types"
)

type capturedRequest struct {
	Payload Payload
	Headers http.Header
	Method  string
}

func setupTestServer(t *testing.T, captured *capturedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Headers = r.Header
		if err := json.NewDecoder(r.Body).Decode(&captured.Payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestNotifier_Type(t *testing.T) {
	n := New("test", Settings{}, nil, zerolog.Nop())
	if n.Type() != types.NotifierWebhook {
		t.Errorf("expected type %s, got %s", types.NotifierWebhook, n.Type())
	}
}

func TestNotifier_DefaultMethod(t *testing.T) {
	n := New("test", Settings{}, nil, zerolog.Nop())
	if n.settings.Method != "POST" {
		t.Errorf("expected default method POST, got %s", n.settings.Method)
	}

	n = New("test", Settings{Method: "put"}, nil, zerolog.Nop())
	if n.settings.Method != "PUT" {
		t.Errorf("expected method PUT, got %s", n.settings.Method)
	}
}

func TestNotifier_Test(t *testing.T) {
	var captured capturedRequest
	server := setupTestServer(t, &captured)
	defer server.Close()

	n := New("test", Settings{URL: server.URL}, http.DefaultClient, zerolog.Nop())
	if err := n.Test(context.Background()); err != nil {
		t.Fatalf("Test() error = %v", err)
	}

	if captured.Payload.EventType != "test" {
		t.Errorf("expected eventType 'test', got %s", captured.Payload.EventType)
	}
	if captured.Payload.InstanceName != "OverFiltrr" {
		t.Errorf("expected instanceName 'OverFiltrr', got %s", captured.Payload.InstanceName)
	}
}

func TestNotifier_OnDecision(t *testing.T) {
	var captured capturedRequest
	server := setupTestServer(t, &captured)
	defer server.Close()

	n := New("test", Settings{
		URL:     server.URL,
		Method:  "PUT",
		Headers: map[string]string{"X-Custom": "value"},
	}, http.DefaultClient, zerolog.Nop())

	event := types.DecisionEvent{
		EventID:    "evt-1",
		RequestID:  7,
		MediaType:  media.TypeMovie,
		Title:      "The Matrix",
		Category:   "EverythingElse",
		ProfileID:  2,
		Status:     types.StatusDryRun,
		State:      "dry_run_logged",
		DryRun:     true,
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := n.OnDecision(context.Background(), event); err != nil {
		t.Fatalf("OnDecision() error = %v", err)
	}

	if captured.Method != "PUT" {
		t.Errorf("expected method PUT, got %s", captured.Method)
	}
	if captured.Headers.Get("X-Custom") != "value" {
		t.Errorf("expected custom header, got %q", captured.Headers.Get("X-Custom"))
	}
	p := captured.Payload
	if p.EventType != "decision" {
		t.Errorf("expected eventType 'decision', got %s", p.EventType)
	}
	if p.Message != "Movie Request Dry Run - 7" {
		t.Errorf("unexpected message %q", p.Message)
	}
	if p.Decision == nil {
		t.Fatal("expected decision in payload")
	}
	if p.Decision.Category != "EverythingElse" || p.Decision.ProfileID != 2 || !p.Decision.DryRun {
		t.Errorf("unexpected decision %+v", p.Decision)
	}
}

func TestNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := New("test", Settings{URL: server.URL}, http.DefaultClient, zerolog.Nop())
	if err := n.Test(context.Background()); err == nil {
		t.Error("expected error for non-2xx response")
	}
}
