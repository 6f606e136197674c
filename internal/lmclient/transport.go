package lmclient

import "context"

// Transport is one concrete way of reaching the LM Studio management system.
// HTTPTransport and CLITransport implement it with identical semantics so the
// Client can substitute one for the other.
type Transport interface {
	// Name identifies the transport in logs, events and metrics ("http", "cli").
	Name() string
	ListModels(ctx context.Context) ([]ModelDTO, error)
	LoadModel(ctx context.Context, id string) error
	UnloadModel(ctx context.Context, id string) error
	GetServerConfig(ctx context.Context) (ServerConfigDTO, error)
	// UpdateServerConfig applies patch and returns the resulting configuration.
	UpdateServerConfig(ctx context.Context, patch ConfigPatch) (ServerConfigDTO, error)
	GetStatus(ctx context.Context) (StatusDTO, error)
	ListTrainingJobs(ctx context.Context) ([]TrainingJobDTO, error)
}
