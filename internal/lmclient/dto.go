package lmclient

import "strings"

// ModelDTO is a model as reported by a transport.
type ModelDTO struct {
	ID     string
	Name   string
	Loaded bool
}

// EvictionDTO mirrors the server's eviction settings.
type EvictionDTO struct {
	TTLSeconds      int
	AutoEvict       bool
	MaxLoadedModels *int
}

// ServerConfigDTO is the full server configuration.
type ServerConfigDTO struct {
	Eviction EvictionDTO
}

// ConfigPatch is a partial update. Nil fields are not sent and must be preserved
// by the server.
type ConfigPatch struct {
	TTLSeconds      *int
	AutoEvict       *bool
	MaxLoadedModels *int
}

// Empty reports whether the patch sets no field.
func (p ConfigPatch) Empty() bool {
	return p.TTLSeconds == nil && p.AutoEvict == nil && p.MaxLoadedModels == nil
}

// ModelRuntimeDTO is the per-model part of StatusDTO.
type ModelRuntimeDTO struct {
	ModelID        string
	Loaded         bool
	ActiveRequests int
}

// StatusDTO is the runtime snapshot of the server.
type StatusDTO struct {
	UptimeSeconds    int64
	Models           []ModelRuntimeDTO
	MemoryUsageBytes *int64
}

// TrainingJobDTO describes one training job. Status is lower case and one of
// queued, running, completed or failed.
type TrainingJobDTO struct {
	ID       string
	ModelID  string
	Status   string
	Progress *int
}

// normalizeTrainingStatus lower-cases s and reports whether it is a known state.
func normalizeTrainingStatus(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "queued", "running", "completed", "failed":
		return s, true
	}
	return s, false
}
