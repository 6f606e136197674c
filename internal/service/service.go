// Package service translates transport-level DTOs from the lmclient facade into
// the domain entities in pkg/types. Services never retry or fall back; errors
// from the facade are returned unchanged.
package service

import (
	"context"

	"lmsbridge/internal/lmclient"
)

// ModelBackend is the part of the facade used by ModelService.
type ModelBackend interface {
	ListModels(ctx context.Context) ([]lmclient.ModelDTO, error)
	LoadModel(ctx context.Context, id string) error
	UnloadModel(ctx context.Context, id string) error
}

// ConfigBackend is the part of the facade used by ConfigService.
type ConfigBackend interface {
	GetServerConfig(ctx context.Context) (lmclient.ServerConfigDTO, error)
	UpdateServerConfig(ctx context.Context, patch lmclient.ConfigPatch) (lmclient.ServerConfigDTO, error)
}

// StatusBackend is the part of the facade used by StatusService.
type StatusBackend interface {
	GetStatus(ctx context.Context) (lmclient.StatusDTO, error)
}

// TrainingBackend is the part of the facade used by TrainingService.
type TrainingBackend interface {
	ListTrainingJobs(ctx context.Context) ([]lmclient.TrainingJobDTO, error)
}

// Backend is the full facade; *lmclient.Client satisfies it.
type Backend interface {
	ModelBackend
	ConfigBackend
	StatusBackend
	TrainingBackend
}

// Set bundles the four domain services built over one backend.
type Set struct {
	Models   *ModelService
	Config   *ConfigService
	Status   *StatusService
	Training *TrainingService
}

// NewSet builds every service over b.
func NewSet(b Backend) Set {
	return Set{
		Models:   NewModelService(b),
		Config:   NewConfigService(b),
		Status:   NewStatusService(b),
		Training: NewTrainingService(b),
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
