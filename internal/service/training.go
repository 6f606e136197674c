package service

import (
	"context"
	"strings"

	"lmsbridge/internal/lmclient"
	"lmsbridge/pkg/types"
)

// TrainingService lists fine-tuning jobs.
type TrainingService struct {
	backend TrainingBackend
}

func NewTrainingService(b TrainingBackend) *TrainingService { return &TrainingService{backend: b} }

// List returns all jobs. A job with a status outside the known set is a remote error.
func (s *TrainingService) List(ctx context.Context) ([]types.TrainingJob, error) {
	dtos, err := s.backend.ListTrainingJobs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.TrainingJob, 0, len(dtos))
	for _, d := range dtos {
		st := types.TrainingStatus(strings.ToLower(strings.TrimSpace(d.Status)))
		if !st.Valid() {
			return nil, lmclient.ErrRemote(nil, "training job %s has unknown status %q", d.ID, d.Status)
		}
		out = append(out, types.TrainingJob{
			ID:              d.ID,
			ModelID:         d.ModelID,
			Status:          st,
			ProgressPercent: copyInt(d.Progress),
		})
	}
	return out, nil
}
