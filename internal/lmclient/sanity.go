package lmclient

import (
	"context"
	"net/http"
	"time"

	"lmsbridge/internal/common/fsutil"
)

// SanityReport describes whether each transport looks usable.
type SanityReport struct {
	HTTPReachable bool   `json:"http_reachable"`
	HTTPBaseURL   string `json:"http_base_url"`
	HTTPError     string `json:"http_error,omitempty"`
	CLIFound      bool   `json:"cli_found"`
	CLIPath       string `json:"cli_path,omitempty"`
	CLIError      string `json:"cli_error,omitempty"`
}

// Ping issues a cheap authenticated request against the models endpoint.
func (t *HTTPTransport) Ping(ctx context.Context) error {
	return t.do(ctx, http.MethodGet, "/models", nil, nil)
}

// BaseURL returns the configured base URL.
func (t *HTTPTransport) BaseURL() string { return t.baseURL }

// SanityCheck probes the HTTP endpoint and looks up the CLI binary. It does
// not go through the fallback policy and never mutates state.
func SanityCheck(ctx context.Context, h *HTTPTransport, cli *CLITransport) SanityReport {
	var r SanityReport
	if h != nil {
		r.HTTPBaseURL = h.BaseURL()
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := h.Ping(pctx)
		cancel()
		r.HTTPReachable = err == nil
		if err != nil {
			r.HTTPError = err.Error()
		}
	}
	if cli != nil {
		path, err := fsutil.ResolveExecutable(cli.Bin())
		r.CLIPath = path
		r.CLIFound = err == nil
		if err != nil {
			r.CLIError = err.Error()
		}
	}
	return r
}
