package lmclient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config encapsulates everything needed to build a Client with the standard
// HTTP-primary / CLI-secondary transports.
type Config struct {
	HTTP      HTTPConfig
	CLI       CLIConfig
	Logger    zerolog.Logger
	Publisher EventPublisher
}

// Client is the unified facade over a primary and a secondary Transport.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	primary   Transport
	secondary Transport
	log       zerolog.Logger
	publisher EventPublisher
}

// New builds a Client that tries primary first and falls back to secondary.
// A nil secondary disables fallback.
func New(primary, secondary Transport, log zerolog.Logger, pub EventPublisher) *Client {
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Client{
		primary:   primary,
		secondary: secondary,
		log:       log.With().Str("component", "lmclient").Logger(),
		publisher: pub,
	}
}

// NewWithConfig constructs the HTTP and CLI transports from cfg and wires them
// into a Client.
func NewWithConfig(cfg Config) *Client {
	return New(NewHTTPTransport(cfg.HTTP), NewCLITransport(cfg.CLI), cfg.Logger, cfg.Publisher)
}

// Transports returns the primary and secondary transports.
func (c *Client) Transports() (primary, secondary Transport) { return c.primary, c.secondary }

func (c *Client) ListModels(ctx context.Context) ([]ModelDTO, error) {
	return dispatch(ctx, c, "list_models", func(ctx context.Context, t Transport) ([]ModelDTO, error) {
		return t.ListModels(ctx)
	})
}

func (c *Client) LoadModel(ctx context.Context, id string) error {
	if err := validateModelID(id); err != nil {
		return err
	}
	_, err := dispatch(ctx, c, "load_model", func(ctx context.Context, t Transport) (struct{}, error) {
		return struct{}{}, t.LoadModel(ctx, id)
	})
	return err
}

func (c *Client) UnloadModel(ctx context.Context, id string) error {
	if err := validateModelID(id); err != nil {
		return err
	}
	_, err := dispatch(ctx, c, "unload_model", func(ctx context.Context, t Transport) (struct{}, error) {
		return struct{}{}, t.UnloadModel(ctx, id)
	})
	return err
}

func (c *Client) GetServerConfig(ctx context.Context) (ServerConfigDTO, error) {
	return dispatch(ctx, c, "get_server_config", func(ctx context.Context, t Transport) (ServerConfigDTO, error) {
		return t.GetServerConfig(ctx)
	})
}

func (c *Client) UpdateServerConfig(ctx context.Context, patch ConfigPatch) (ServerConfigDTO, error) {
	return dispatch(ctx, c, "update_server_config", func(ctx context.Context, t Transport) (ServerConfigDTO, error) {
		return t.UpdateServerConfig(ctx, patch)
	})
}

func (c *Client) GetStatus(ctx context.Context) (StatusDTO, error) {
	return dispatch(ctx, c, "get_status", func(ctx context.Context, t Transport) (StatusDTO, error) {
		return t.GetStatus(ctx)
	})
}

func (c *Client) ListTrainingJobs(ctx context.Context) ([]TrainingJobDTO, error) {
	return dispatch(ctx, c, "list_training_jobs", func(ctx context.Context, t Transport) ([]TrainingJobDTO, error) {
		return t.ListTrainingJobs(ctx)
	})
}

func validateModelID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrValidation("model id is required")
	}
	return nil
}

// dispatch runs one call: primary, then on failure exactly one secondary
// attempt. The warn line and the fallback event are emitted before the
// secondary starts. The secondary's error is returned as-is.
func dispatch[T any](ctx context.Context, c *Client, op string, fn func(context.Context, Transport) (T, error)) (T, error) {
	start := time.Now()
	defer func() { callDuration.WithLabelValues(op).Observe(time.Since(start).Seconds()) }()
	callID := uuid.NewString()
	log := c.log.With().Str("op", op).Str("call_id", callID).Logger()

	res, err := fn(ctx, c.primary)
	transportCallsTotal.WithLabelValues(op, c.primary.Name(), outcomeLabel(err)).Inc()
	if err == nil {
		log.Debug().Str("transport", c.primary.Name()).Dur("dur", time.Since(start)).Msg("call ok")
		return res, nil
	}
	var zero T
	if c.secondary == nil {
		return zero, err
	}
	if ctx.Err() != nil {
		log.Debug().Err(err).Msg("caller gone, skipping fallback")
		return zero, newError(KindInternal, ctx.Err(), "%s aborted", op)
	}

	log.Warn().
		Str("transport", c.primary.Name()).
		Str("fallback", c.secondary.Name()).
		Str("kind", string(KindOf(err))).
		Err(err).
		Msg("transport failed, falling back")
	fallbacksTotal.WithLabelValues(op).Inc()
	c.publisher.Publish(Event{
		Name:      "fallback",
		Op:        op,
		CallID:    callID,
		Transport: c.primary.Name(),
		Time:      time.Now(),
		Fields:    map[string]any{"error": err.Error(), "kind": string(KindOf(err)), "fallback": c.secondary.Name()},
	})

	res, err = fn(ctx, c.secondary)
	transportCallsTotal.WithLabelValues(op, c.secondary.Name(), outcomeLabel(err)).Inc()
	if err != nil {
		log.Debug().Str("transport", c.secondary.Name()).Err(err).Msg("fallback failed")
		return zero, err
	}
	log.Debug().Str("transport", c.secondary.Name()).Dur("dur", time.Since(start)).Msg("call ok")
	return res, nil
}
