package service

import (
	"context"
	"strings"

	"lmsbridge/internal/lmclient"
	"lmsbridge/pkg/types"
)

// ModelService lists, loads and unloads models.
type ModelService struct {
	backend ModelBackend
}

func NewModelService(b ModelBackend) *ModelService { return &ModelService{backend: b} }

// List returns every model known to the server.
func (s *ModelService) List(ctx context.Context) ([]types.Model, error) {
	dtos, err := s.backend.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Model, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, toModel(d))
	}
	return out, nil
}

// Get returns one model by id, or a not-found error.
func (s *ModelService) Get(ctx context.Context, id string) (types.Model, error) {
	if strings.TrimSpace(id) == "" {
		return types.Model{}, lmclient.ErrValidation("model id is required")
	}
	models, err := s.List(ctx)
	if err != nil {
		return types.Model{}, err
	}
	for _, m := range models {
		if m.ID == id {
			return m, nil
		}
	}
	return types.Model{}, lmclient.ErrNotFound("model", id)
}

func (s *ModelService) Load(ctx context.Context, id string) error {
	return s.backend.LoadModel(ctx, id)
}

func (s *ModelService) Unload(ctx context.Context, id string) error {
	return s.backend.UnloadModel(ctx, id)
}

func toModel(d lmclient.ModelDTO) types.Model {
	m := types.Model{ID: d.ID, Name: d.Name, Status: modelStatus(d.Loaded)}
	if m.Name == "" {
		m.Name = d.ID
	}
	return m
}

func modelStatus(loaded bool) types.ModelStatus {
	if loaded {
		return types.ModelLoaded
	}
	return types.ModelUnloaded
}
