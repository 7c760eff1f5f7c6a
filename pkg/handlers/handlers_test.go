package handlers_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/JaimeStill/agentflow/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
	}{
		{
			name:       "200 with map",
			status:     http.StatusOK,
			data:       map[string]string{"key": "value"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "201 with struct",
			status:     http.StatusCreated,
			data:       struct{ ID int }{ID: 42},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.wantStatus {
				t.Errorf("status: got %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if ct := res.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type: got %s", ct)
			}

			body, _ := io.ReadAll(res.Body)
			var parsed map[string]any
			if err := json.Unmarshal(body, &parsed); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()

	handlers.RespondError(rec, logger, http.StatusBadRequest, errors.New("invalid input"))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %s", ct)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed map[string]string
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if parsed["message"] != "invalid input" {
		t.Errorf("message: got %s, want invalid input", parsed["message"])
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"flow"}`))
	got, err := handlers.DecodeJSON[payload](req)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Name != "flow" {
		t.Errorf("name: got %s, want flow", got.Name)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{`))
	if _, err := handlers.DecodeJSON[payload](req); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestEventStream(t *testing.T) {
	rec := httptest.NewRecorder()

	stream, err := handlers.NewEventStream(rec)
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}

	if err := stream.Send("state", map[string]int{"version": 3}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := stream.Comment("ping"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type: got %s", ct)
	}

	want := "event: state\ndata: {\"version\":3}\n\n: ping\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body: got %q, want %q", got, want)
	}
}
