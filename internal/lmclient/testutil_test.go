package lmclient

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeTransport is an in-memory Transport that records calls.
type fakeTransport struct {
	name string
	err  error
	// before runs at the start of every call.
	before func()

	mu      sync.Mutex
	calls   []string
	models  []ModelDTO
	cfg     ServerConfigDTO
	patches []ConfigPatch
	status  StatusDTO
	jobs    []TrainingJobDTO
}

func (f *fakeTransport) Name() string { return f.name }

func (f *fakeTransport) record(call string) error {
	if f.before != nil {
		f.before()
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return f.err
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeTransport) ListModels(ctx context.Context) ([]ModelDTO, error) {
	if err := f.record("list_models"); err != nil {
		return nil, err
	}
	return append([]ModelDTO(nil), f.models...), nil
}

func (f *fakeTransport) LoadModel(ctx context.Context, id string) error {
	return f.record("load_model:" + id)
}

func (f *fakeTransport) UnloadModel(ctx context.Context, id string) error {
	return f.record("unload_model:" + id)
}

func (f *fakeTransport) GetServerConfig(ctx context.Context) (ServerConfigDTO, error) {
	if err := f.record("get_server_config"); err != nil {
		return ServerConfigDTO{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg, nil
}

func (f *fakeTransport) UpdateServerConfig(ctx context.Context, patch ConfigPatch) (ServerConfigDTO, error) {
	if err := f.record("update_server_config"); err != nil {
		return ServerConfigDTO{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	if patch.TTLSeconds != nil {
		f.cfg.Eviction.TTLSeconds = *patch.TTLSeconds
	}
	if patch.AutoEvict != nil {
		f.cfg.Eviction.AutoEvict = *patch.AutoEvict
	}
	if patch.MaxLoadedModels != nil {
		n := *patch.MaxLoadedModels
		f.cfg.Eviction.MaxLoadedModels = &n
	}
	return f.cfg, nil
}

func (f *fakeTransport) GetStatus(ctx context.Context) (StatusDTO, error) {
	if err := f.record("get_status"); err != nil {
		return StatusDTO{}, err
	}
	return f.status, nil
}

func (f *fakeTransport) ListTrainingJobs(ctx context.Context) ([]TrainingJobDTO, error) {
	if err := f.record("list_training_jobs"); err != nil {
		return nil, err
	}
	return append([]TrainingJobDTO(nil), f.jobs...), nil
}

// syncBuffer is a bytes.Buffer safe for the logger and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
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

// levelLines returns the JSON log lines at the given level.
func (b *syncBuffer) levelLines(level string) []string {
	var out []string
	for _, l := range strings.Split(b.String(), "\n") {
		if strings.Contains(l, fmt.Sprintf(`"level":%q`, level)) {
			out = append(out, l)
		}
	}
	return out
}

func newTestLogger() (zerolog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return zerolog.New(buf).Level(zerolog.DebugLevel), buf
}

func httpDown(msg string) error {
	return newError(KindHTTPUnavailable, context.DeadlineExceeded, "%s", msg).withDetail("timeout", true)
}

func cliDown(msg string) error {
	return newError(KindCLIUnavailable, nil, "%s", msg).withDetail("exit_code", 1)
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func intPtr(n int) *int { return &n }
