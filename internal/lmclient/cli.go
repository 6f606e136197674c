package lmclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// CLIConfig configures CLITransport.
type CLIConfig struct {
	// Bin is the path of the `lms` executable.
	Bin string
	// Args are prepended to every invocation (e.g. --host, --port).
	Args    []string
	Timeout time.Duration
	// Env holds extra environment variables on top of the inherited environment.
	Env map[string]string
}

const (
	defaultCLITimeout = 30 * time.Second
	stderrTailBytes   = 2048
)

// CLITransport implements Transport by invoking the LM Studio command-line tool
// and parsing its JSON output.
type CLITransport struct {
	bin     string
	args    []string
	timeout time.Duration
	env     map[string]string
}

// NewCLITransport constructs a process-backed transport.
func NewCLITransport(cfg CLIConfig) *CLITransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCLITimeout
	}
	env := make(map[string]string, len(cfg.Env))
	for k, v := range cfg.Env {
		env[k] = v
	}
	return &CLITransport{
		bin:     strings.TrimSpace(cfg.Bin),
		args:    append([]string(nil), cfg.Args...),
		timeout: cfg.Timeout,
		env:     env,
	}
}

func (t *CLITransport) Name() string { return "cli" }

// Bin returns the configured executable path.
func (t *CLITransport) Bin() string { return t.bin }

func (t *CLITransport) ListModels(ctx context.Context) ([]ModelDTO, error) {
	ctx, cancel := t.opContext(ctx)
	defer cancel()
	ls, err := t.run(ctx, "ls", "--json")
	if err != nil {
		return nil, err
	}
	ps, err := t.run(ctx, "ps", "--json")
	if err != nil {
		return nil, err
	}
	return parseModelList(ls, ps)
}

func (t *CLITransport) LoadModel(ctx context.Context, id string) error {
	ctx, cancel := t.opContext(ctx)
	defer cancel()
	_, err := t.run(ctx, "load", id, "--yes")
	return err
}

func (t *CLITransport) UnloadModel(ctx context.Context, id string) error {
	ctx, cancel := t.opContext(ctx)
	defer cancel()
	_, err := t.run(ctx, "unload", id)
	return err
}

func (t *CLITransport) GetServerConfig(ctx context.Context) (ServerConfigDTO, error) {
	ctx, cancel := t.opContext(ctx)
	defer cancel()
	out, err := t.run(ctx, "server", "config", "get", "--json")
	if err != nil {
		return ServerConfigDTO{}, err
	}
	return parseServerConfig(out)
}

func (t *CLITransport) UpdateServerConfig(ctx context.Context, patch ConfigPatch) (ServerConfigDTO, error) {
	ctx, cancel := t.opContext(ctx)
	defer cancel()
	out, err := t.run(ctx, configSetArgs(patch)...)
	if err != nil {
		return ServerConfigDTO{}, err
	}
	return parseServerConfig(out)
}

func (t *CLITransport) GetStatus(ctx context.Context) (StatusDTO, error) {
	ctx, cancel := t.opContext(ctx)
	defer cancel()
	out, err := t.run(ctx, "status", "--json")
	if err != nil {
		return StatusDTO{}, err
	}
	return parseStatus(out)
}

func (t *CLITransport) ListTrainingJobs(ctx context.Context) ([]TrainingJobDTO, error) {
	ctx, cancel := t.opContext(ctx)
	defer cancel()
	out, err := t.run(ctx, "train", "ls", "--json")
	if err != nil {
		return nil, err
	}
	return parseTrainingJobs(out)
}

// configSetArgs renders only the fields present in patch.
func configSetArgs(patch ConfigPatch) []string {
	args := []string{"server", "config", "set"}
	if patch.TTLSeconds != nil {
		args = append(args, "--ttl", strconv.Itoa(*patch.TTLSeconds))
	}
	if patch.AutoEvict != nil {
		args = append(args, "--auto-evict="+strconv.FormatBool(*patch.AutoEvict))
	}
	if patch.MaxLoadedModels != nil {
		args = append(args, "--max-loaded", strconv.Itoa(*patch.MaxLoadedModels))
	}
	return append(args, "--json")
}

// opContext bounds one operation, however many invocations it takes.
func (t *CLITransport) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(ctx, t.timeout)
	}
	return context.WithCancel(ctx)
}

// run executes the tool with the default args followed by args and returns
// stdout. The deadline comes from ctx.
func (t *CLITransport) run(ctx context.Context, args ...string) ([]byte, error) {
	if t.bin == "" {
		return nil, newError(KindCLIUnavailable, nil, "lms binary not configured")
	}
	argv := append(append([]string(nil), t.args...), args...)
	cmd := exec.CommandContext(ctx, t.bin, argv...)
	cmd.Env = os.Environ()
	for k, v := range t.env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.WaitDelay = 2 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	op := strings.Join(args, " ")

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctx.Err() != nil {
		e := newError(KindCLIUnavailable, ctx.Err(), "lms %s", op)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			e.withDetail("timeout", true)
		}
		return nil, e
	}
	e := newError(KindCLIUnavailable, err, "lms %s", op)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.withDetail("exit_code", exitErr.ExitCode())
	}
	if tail := tailString(stderr.String(), stderrTailBytes); tail != "" {
		e.withDetail("stderr", tail)
	}
	return nil, e
}

// tailString keeps at most the last n bytes of s without splitting a rune.
func tailString(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}
