package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lmsbridge/internal/httpapi"
	"lmsbridge/internal/lmclient"
	"lmsbridge/internal/service"
)

// fakeLMStudio serves the subset of the LM Studio REST API the bridge uses.
type fakeLMStudio struct {
	mu        sync.Mutex
	down      bool
	ttl       int
	autoEvict bool
	maxLoaded int
	loaded    map[string]bool
	patches   []map[string]any
}

func newFakeLMStudio(t *testing.T) (*fakeLMStudio, *httptest.Server) {
	t.Helper()
	f := &fakeLMStudio{ttl: 60, autoEvict: true, maxLoaded: 2, loaded: map[string]bool{"a": true, "b": false}}
	ts := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(ts.Close)
	return f, ts
}

func (f *fakeLMStudio) setDown(v bool) {
	f.mu.Lock()
	f.down = v
	f.mu.Unlock()
}

func (f *fakeLMStudio) config() map[string]any {
	return map[string]any{"eviction": map[string]any{"ttl_seconds": f.ttl, "auto_evict": f.autoEvict, "max_loaded_models": f.maxLoaded}}
}

func (f *fakeLMStudio) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	enc := json.NewEncoder(w)
	switch p := strings.TrimPrefix(r.URL.Path, "/api/v0"); {
	case p == "/models":
		data := []map[string]any{}
		for _, id := range []string{"a", "b"} {
			state := "not-loaded"
			if f.loaded[id] {
				state = "loaded"
			}
			data = append(data, map[string]any{"id": id, "state": state})
		}
		_ = enc.Encode(map[string]any{"data": data})
	case p == "/models/load" || p == "/models/unload":
		var body struct{ Model string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.loaded[body.Model] = p == "/models/load"
		_ = enc.Encode(map[string]any{"ok": true})
	case p == "/server/config" && r.Method == http.MethodPatch:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.patches = append(f.patches, body)
		if ev, ok := body["eviction"].(map[string]any); ok {
			if v, ok := ev["ttl_seconds"].(float64); ok {
				f.ttl = int(v)
			}
			if v, ok := ev["auto_evict"].(bool); ok {
				f.autoEvict = v
			}
			if v, ok := ev["max_loaded_models"].(float64); ok {
				f.maxLoaded = int(v)
			}
		}
		_ = enc.Encode(f.config())
	case p == "/server/config":
		_ = enc.Encode(f.config())
	case p == "/server/status":
		models := []map[string]any{}
		for _, id := range []string{"a", "b"} {
			state := "not-loaded"
			if f.loaded[id] {
				state = "loaded"
			}
			models = append(models, map[string]any{"id": id, "state": state, "active_requests": 0})
		}
		_ = enc.Encode(map[string]any{"uptime_seconds": 100, "models": models})
	case p == "/training/jobs":
		_ = enc.Encode(map[string]any{"data": []map[string]any{{"id": "j1", "model_id": "a", "status": "running", "progress": 10}}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func moduleRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/internal/e2e/helpers_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

// goBuild compiles pkg (relative to the module root) into a temp dir.
func goBuild(t *testing.T, pkg, name string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("short mode: skipping build")
	}
	bin := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", bin, pkg)
	cmd.Dir = moduleRoot(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build %s failed: %v\n%s", pkg, err, string(out))
	}
	return bin
}

type stack struct {
	srv *httptest.Server
	hub *httpapi.EventHub
	log *bytes.Buffer
}

// newStack wires facade, services and HTTP API in-process.
func newStack(t *testing.T, lmURL, cliBin string, cliEnv map[string]string) *stack {
	t.Helper()
	var logBuf bytes.Buffer
	log := zerolog.New(&logBuf).Level(zerolog.DebugLevel)
	hub := httpapi.NewEventHub()
	client := lmclient.NewWithConfig(lmclient.Config{
		HTTP:      lmclient.HTTPConfig{BaseURL: lmURL, Timeout: 2 * time.Second},
		CLI:       lmclient.CLIConfig{Bin: cliBin, Timeout: 5 * time.Second, Env: cliEnv},
		Logger:    log,
		Publisher: hub,
	})
	set := service.NewSet(client)
	srv := httptest.NewServer(httpapi.NewMux(httpapi.Services{
		Models: set.Models, Config: set.Config, Status: set.Status, Training: set.Training, Events: hub,
	}))
	t.Cleanup(srv.Close)
	return &stack{srv: srv, hub: hub, log: &logBuf}
}

func httpDo(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}
