package service

import (
	"context"

	"lmsbridge/pkg/types"
)

// StatusService reports the server runtime snapshot.
type StatusService struct {
	backend StatusBackend
}

func NewStatusService(b StatusBackend) *StatusService { return &StatusService{backend: b} }

func (s *StatusService) Get(ctx context.Context) (types.ServerStatus, error) {
	dto, err := s.backend.GetStatus(ctx)
	if err != nil {
		return types.ServerStatus{}, err
	}
	st := types.ServerStatus{
		UptimeSeconds:    dto.UptimeSeconds,
		MemoryUsageBytes: copyInt64(dto.MemoryUsageBytes),
		Models:           make([]types.ModelRuntimeStatus, 0, len(dto.Models)),
	}
	for _, m := range dto.Models {
		if m.Loaded {
			st.LoadedCount++
		}
		st.Models = append(st.Models, types.ModelRuntimeStatus{
			ModelID:        m.ModelID,
			State:          modelStatus(m.Loaded),
			ActiveRequests: m.ActiveRequests,
		})
	}
	return st, nil
}
