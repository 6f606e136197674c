package service

import (
	"context"

	"lmsbridge/internal/lmclient"
	"lmsbridge/pkg/types"
)

// ConfigService reads and patches the server's eviction configuration.
type ConfigService struct {
	backend ConfigBackend
}

func NewConfigService(b ConfigBackend) *ConfigService { return &ConfigService{backend: b} }

func (s *ConfigService) Get(ctx context.Context) (types.ServerConfig, error) {
	dto, err := s.backend.GetServerConfig(ctx)
	if err != nil {
		return types.ServerConfig{}, err
	}
	return toServerConfig(dto), nil
}

// Update applies patch and returns the resulting configuration. Only fields
// present in patch are forwarded; absent fields keep their server-side value.
func (s *ConfigService) Update(ctx context.Context, patch types.ServerConfigPatch) (types.ServerConfig, error) {
	p, err := buildPatch(patch)
	if err != nil {
		return types.ServerConfig{}, err
	}
	dto, err := s.backend.UpdateServerConfig(ctx, p)
	if err != nil {
		return types.ServerConfig{}, err
	}
	return toServerConfig(dto), nil
}

func buildPatch(patch types.ServerConfigPatch) (lmclient.ConfigPatch, error) {
	var p lmclient.ConfigPatch
	ev := patch.Eviction
	if ev == nil {
		return p, nil
	}
	if ev.TTLSeconds != nil {
		if *ev.TTLSeconds < 0 {
			return p, lmclient.ErrValidation("ttlSeconds must be >= 0, got %d", *ev.TTLSeconds)
		}
		p.TTLSeconds = copyInt(ev.TTLSeconds)
	}
	if ev.AutoEvict != nil {
		v := *ev.AutoEvict
		p.AutoEvict = &v
	}
	if ev.MaxLoadedModels != nil {
		if *ev.MaxLoadedModels < 0 {
			return p, lmclient.ErrValidation("maxLoadedModels must be >= 0, got %d", *ev.MaxLoadedModels)
		}
		p.MaxLoadedModels = copyInt(ev.MaxLoadedModels)
	}
	return p, nil
}

func toServerConfig(d lmclient.ServerConfigDTO) types.ServerConfig {
	return types.ServerConfig{Eviction: types.EvictionConfig{
		TTLSeconds:      d.Eviction.TTLSeconds,
		AutoEvict:       d.Eviction.AutoEvict,
		MaxLoadedModels: copyInt(d.Eviction.MaxLoadedModels),
	}}
}
