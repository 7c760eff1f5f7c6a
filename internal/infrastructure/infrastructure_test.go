package infrastructure_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/agentflow/internal/config"
	"github.com/JaimeStill/agentflow/internal/infrastructure"
	"github.com/JaimeStill/agentflow/internal/palette"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

func loadConfig(t *testing.T, engineURL string) *config.Config {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	t.Setenv("AGENTFLOW_ENGINE_URL", engineURL)
	t.Setenv("AGENTFLOW_EDITOR_SNAP_GRID", "10")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newSyncBuffer() *syncBuffer {
	return &syncBuffer{}
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNew(t *testing.T) {
	cfg := loadConfig(t, "http://localhost:8000")

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if infra.Engine.BaseURL() != "http://localhost:8000" {
		t.Errorf("engine url: got %s", infra.Engine.BaseURL())
	}
	if len(infra.Templates.List("")) == 0 {
		t.Error("expected builtin templates")
	}
	if infra.Runner.Running() {
		t.Error("runner should be idle")
	}

	node, ok := infra.Palette.Drop(palette.Payload{
		palette.KeyNodeType: string(workflow.TypeLLM),
	}, workflow.Position{X: 14, Y: 26})
	if !ok {
		t.Fatal("drop should succeed")
	}
	if node.Position.X != 10 || node.Position.Y != 30 {
		t.Errorf("position not snapped to grid: %+v", node.Position)
	}
}

func TestStartProbesEngine(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"agentflow"}`))
	}))
	defer engine.Close()

	cfg := loadConfig(t, engine.URL)
	logs := newSyncBuffer()

	infra, err := infrastructure.NewWithLogger(cfg, slog.New(slog.NewTextHandler(logs, nil)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	infra.Lifecycle.WaitForStartup()
	if !infra.Lifecycle.Ready() {
		t.Error("lifecycle should be ready after startup")
	}
	if !strings.Contains(logs.String(), "engine reachable") {
		t.Errorf("expected reachable log, got %q", logs.String())
	}

	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestStartToleratesUnreachableEngine(t *testing.T) {
	engine := httptest.NewServer(http.NotFoundHandler())
	url := engine.URL
	engine.Close()

	cfg := loadConfig(t, url)
	logs := newSyncBuffer()

	infra, err := infrastructure.NewWithLogger(cfg, slog.New(slog.NewTextHandler(logs, nil)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	infra.Lifecycle.WaitForStartup()
	if !strings.Contains(logs.String(), "engine unreachable") {
		t.Errorf("expected unreachable log, got %q", logs.String())
	}

	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
