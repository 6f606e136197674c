package e2e

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"lmsbridge/internal/lmclient"
	"lmsbridge/pkg/types"
)

func TestE2E_HTTPPathServesEverything(t *testing.T) {
	_, lm := newFakeLMStudio(t)
	s := newStack(t, lm.URL, "", nil)

	resp, body := httpDo(t, http.MethodGet, s.srv.URL+"/models", "")
	var models types.ModelsResponse
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &models) != nil || len(models.Models) != 2 {
		t.Fatalf("/models %d %s", resp.StatusCode, body)
	}
	if models.Models[0].Status != types.ModelLoaded || models.Models[1].Status != types.ModelUnloaded {
		t.Fatalf("models=%+v", models.Models)
	}

	if resp, body := httpDo(t, http.MethodPost, s.srv.URL+"/models/b/load", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("load %d %s", resp.StatusCode, body)
	}
	resp, body = httpDo(t, http.MethodGet, s.srv.URL+"/status", "")
	var st types.ServerStatus
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &st) != nil || st.LoadedCount != 2 {
		t.Fatalf("/status %d %s", resp.StatusCode, body)
	}

	resp, body = httpDo(t, http.MethodGet, s.srv.URL+"/training/jobs", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"running"`) {
		t.Fatalf("/training/jobs %d %s", resp.StatusCode, body)
	}
	if strings.Contains(s.log.String(), `"level":"warn"`) {
		t.Fatalf("no fallback expected: %s", s.log.String())
	}
}

// Patching ttl leaves the other eviction fields as they were.
func TestE2E_PatchIsolation(t *testing.T) {
	lmState, lm := newFakeLMStudio(t)
	s := newStack(t, lm.URL, "", nil)
	resp, body := httpDo(t, http.MethodPatch, s.srv.URL+"/config", `{"eviction":{"ttlSeconds":300}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch %d %s", resp.StatusCode, body)
	}
	var cfg types.ServerConfig
	_ = json.Unmarshal(body, &cfg)
	if cfg.Eviction.TTLSeconds != 300 || !cfg.Eviction.AutoEvict || cfg.Eviction.MaxLoadedModels == nil || *cfg.Eviction.MaxLoadedModels != 2 {
		t.Fatalf("cfg=%+v", cfg)
	}
	lmState.mu.Lock()
	ev, _ := lmState.patches[0]["eviction"].(map[string]any)
	lmState.mu.Unlock()
	if len(ev) != 1 {
		t.Fatalf("upstream patch must carry only ttl: %v", ev)
	}

	// Empty patch: nothing changes.
	resp, body = httpDo(t, http.MethodPatch, s.srv.URL+"/config", `{}`)
	var again types.ServerConfig
	_ = json.Unmarshal(body, &again)
	if resp.StatusCode != http.StatusOK || again.Eviction.TTLSeconds != 300 || !again.Eviction.AutoEvict {
		t.Fatalf("empty patch %d %s", resp.StatusCode, body)
	}
}

func TestE2E_ValidationAndNotFound(t *testing.T) {
	_, lm := newFakeLMStudio(t)
	s := newStack(t, lm.URL, "", nil)
	resp, body := httpDo(t, http.MethodGet, s.srv.URL+"/models/nope", "")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), `"kind":"not_found"`) {
		t.Fatalf("%d %s", resp.StatusCode, body)
	}
	resp, body = httpDo(t, http.MethodPatch, s.srv.URL+"/config", `{"eviction":{"ttlSeconds":-1}}`)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), `"kind":"validation"`) {
		t.Fatalf("%d %s", resp.StatusCode, body)
	}
}

// HTTP down and no CLI: the caller sees the CLI failure, one warn names the HTTP failure.
func TestE2E_BothTransportsDown(t *testing.T) {
	lmState, lm := newFakeLMStudio(t)
	lmState.setDown(true)
	missing := filepath.Join(t.TempDir(), "lms")
	s := newStack(t, lm.URL, missing, nil)

	resp, body := httpDo(t, http.MethodGet, s.srv.URL+"/models", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("%d %s", resp.StatusCode, body)
	}
	var e types.ErrorResponse
	_ = json.Unmarshal(body, &e)
	if e.Kind != string(lmclient.KindCLIUnavailable) {
		t.Fatalf("error=%+v", e)
	}
	warns := 0
	for _, line := range strings.Split(s.log.String(), "\n") {
		if strings.Contains(line, `"level":"warn"`) {
			warns++
			if !strings.Contains(line, `"transport":"http"`) || !strings.Contains(line, "503") {
				t.Fatalf("warn line must carry the http failure: %s", line)
			}
		}
	}
	if warns != 1 {
		t.Fatalf("warn lines=%d log=%s", warns, s.log.String())
	}
}

// HTTP down, CLI up: data comes from the CLI and subscribers see one fallback event.
func TestE2E_FallbackToCLIWithEvents(t *testing.T) {
	fake := goBuild(t, "./internal/lmclient/testdata/fake_lms.go", "lms")
	lmState, lm := newFakeLMStudio(t)
	lmState.setDown(true)
	s := newStack(t, lm.URL, fake, nil)

	u := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.Subscribers() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, body := httpDo(t, http.MethodGet, s.srv.URL+"/models", "")
	var models types.ModelsResponse
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &models) != nil {
		t.Fatalf("/models %d %s", resp.StatusCode, body)
	}
	if len(models.Models) != 2 || models.Models[0].ID != "c" || models.Models[0].Status != types.ModelLoaded {
		t.Fatalf("models=%+v", models.Models)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev lmclient.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Name != "fallback" || ev.Op != "list_models" || ev.Transport != "http" {
		t.Fatalf("event=%+v", ev)
	}

	resp, body = httpDo(t, http.MethodPatch, s.srv.URL+"/config", `{"eviction":{"ttlSeconds":120}}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ttlSeconds":120`) {
		t.Fatalf("patch via cli %d %s", resp.StatusCode, body)
	}
}
