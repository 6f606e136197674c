package lmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig configures HTTPTransport.
type HTTPConfig struct {
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey         string
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

const (
	defaultHTTPTimeout    = 10 * time.Second
	defaultConnectTimeout = 3 * time.Second
	apiPrefix             = "/api/v0"
)

// HTTPTransport implements Transport against the LM Studio REST API.
type HTTPTransport struct {
	baseURL    string
	apiKey     string
	reqTimeout time.Duration
	httpClient *http.Client
}

// NewHTTPTransport constructs an HTTP-backed transport.
func NewHTTPTransport(cfg HTTPConfig) *HTTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout=0: every request carries its deadline in the context.
	return &HTTPTransport{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		reqTimeout: cfg.Timeout,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
	}
}

func (t *HTTPTransport) Name() string { return "http" }

// Wire shapes.

type wireModel struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	State       string `json:"state"`
}

type wireList[T any] struct {
	Object string `json:"object,omitempty"`
	Data   []T    `json:"data"`
}

type wireModelRequest struct {
	Model string `json:"model"`
}

type wireEviction struct {
	TTLSeconds      *int  `json:"ttl_seconds,omitempty"`
	AutoEvict       *bool `json:"auto_evict,omitempty"`
	MaxLoadedModels *int  `json:"max_loaded_models,omitempty"`
}

type wireConfig struct {
	Eviction *wireEviction `json:"eviction"`
}

type wireModelStatus struct {
	ID             string `json:"id"`
	State          string `json:"state"`
	ActiveRequests int    `json:"active_requests"`
}

type wireStatus struct {
	UptimeSeconds    *int64            `json:"uptime_seconds"`
	Models           []wireModelStatus `json:"models"`
	MemoryUsageBytes *int64            `json:"memory_usage_bytes,omitempty"`
}

type wireTrainingJob struct {
	ID       string `json:"id"`
	ModelID  string `json:"model_id"`
	Status   string `json:"status"`
	Progress *int   `json:"progress,omitempty"`
}

func (t *HTTPTransport) ListModels(ctx context.Context) ([]ModelDTO, error) {
	var list wireList[wireModel]
	if err := t.do(ctx, http.MethodGet, "/models", nil, &list); err != nil {
		return nil, err
	}
	out := make([]ModelDTO, 0, len(list.Data))
	for _, m := range list.Data {
		if m.ID == "" {
			return nil, ErrRemote(nil, "model entry without id")
		}
		out = append(out, ModelDTO{ID: m.ID, Name: m.DisplayName, Loaded: isLoadedState(m.State)})
	}
	return out, nil
}

func (t *HTTPTransport) LoadModel(ctx context.Context, id string) error {
	return t.do(ctx, http.MethodPost, "/models/load", wireModelRequest{Model: id}, nil)
}

func (t *HTTPTransport) UnloadModel(ctx context.Context, id string) error {
	return t.do(ctx, http.MethodPost, "/models/unload", wireModelRequest{Model: id}, nil)
}

func (t *HTTPTransport) GetServerConfig(ctx context.Context) (ServerConfigDTO, error) {
	var cfg wireConfig
	if err := t.do(ctx, http.MethodGet, "/server/config", nil, &cfg); err != nil {
		return ServerConfigDTO{}, err
	}
	return cfg.toDTO()
}

func (t *HTTPTransport) UpdateServerConfig(ctx context.Context, patch ConfigPatch) (ServerConfigDTO, error) {
	body := wireConfig{Eviction: &wireEviction{
		TTLSeconds:      patch.TTLSeconds,
		AutoEvict:       patch.AutoEvict,
		MaxLoadedModels: patch.MaxLoadedModels,
	}}
	var cfg wireConfig
	if err := t.do(ctx, http.MethodPatch, "/server/config", body, &cfg); err != nil {
		return ServerConfigDTO{}, err
	}
	return cfg.toDTO()
}

func (t *HTTPTransport) GetStatus(ctx context.Context) (StatusDTO, error) {
	var st wireStatus
	if err := t.do(ctx, http.MethodGet, "/server/status", nil, &st); err != nil {
		return StatusDTO{}, err
	}
	if st.UptimeSeconds == nil {
		return StatusDTO{}, ErrRemote(nil, "status without uptime_seconds")
	}
	out := StatusDTO{UptimeSeconds: *st.UptimeSeconds, MemoryUsageBytes: st.MemoryUsageBytes}
	out.Models = make([]ModelRuntimeDTO, 0, len(st.Models))
	for _, m := range st.Models {
		out.Models = append(out.Models, ModelRuntimeDTO{ModelID: m.ID, Loaded: isLoadedState(m.State), ActiveRequests: m.ActiveRequests})
	}
	return out, nil
}

func (t *HTTPTransport) ListTrainingJobs(ctx context.Context) ([]TrainingJobDTO, error) {
	var list wireList[wireTrainingJob]
	if err := t.do(ctx, http.MethodGet, "/training/jobs", nil, &list); err != nil {
		return nil, err
	}
	out := make([]TrainingJobDTO, 0, len(list.Data))
	for _, j := range list.Data {
		if j.ID == "" {
			return nil, ErrRemote(nil, "training job without id")
		}
		st, ok := normalizeTrainingStatus(j.Status)
		if !ok {
			return nil, ErrRemote(nil, "training job %s has unknown status %q", j.ID, j.Status)
		}
		out = append(out, TrainingJobDTO{ID: j.ID, ModelID: j.ModelID, Status: st, Progress: j.Progress})
	}
	return out, nil
}

func (c wireConfig) toDTO() (ServerConfigDTO, error) {
	if c.Eviction == nil || c.Eviction.TTLSeconds == nil || c.Eviction.AutoEvict == nil {
		return ServerConfigDTO{}, ErrRemote(nil, "incomplete server config")
	}
	return ServerConfigDTO{Eviction: EvictionDTO{
		TTLSeconds:      *c.Eviction.TTLSeconds,
		AutoEvict:       *c.Eviction.AutoEvict,
		MaxLoadedModels: c.Eviction.MaxLoadedModels,
	}}, nil
}

// isLoadedState accepts the states LM Studio reports ("loaded", "not-loaded").
func isLoadedState(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "loaded")
}

// do performs one request. in is JSON-encoded when non-nil; out is decoded from
// a 2xx body when non-nil.
func (t *HTTPTransport) do(ctx context.Context, method, path string, in, out any) error {
	if t.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.reqTimeout)
		defer cancel()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return newError(KindInternal, err, "encode %s %s", method, path)
		}
		body = bytes.NewReader(b)
	}
	url := t.baseURL + apiPrefix + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return newError(KindInternal, err, "build request %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		e := newError(KindHTTPUnavailable, err, "%s %s", method, path)
		if ctx.Err() != nil {
			e.Err = ctx.Err()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				e.withDetail("timeout", true)
			}
		}
		return e
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return newError(KindHTTPUnavailable, nil, "%s %s: %s", method, path, resp.Status).
			withDetail("status", resp.StatusCode).
			withDetail("body", strings.TrimSpace(string(b)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(out); err != nil {
		if ctx.Err() != nil {
			return newError(KindHTTPUnavailable, ctx.Err(), "%s %s", method, path)
		}
		return ErrRemote(err, "decode %s %s", method, path)
	}
	return nil
}
