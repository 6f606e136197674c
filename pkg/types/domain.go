package types

// ModelStatus is the load state of a model as seen by the management server.
type ModelStatus string

const (
	ModelLoaded   ModelStatus = "loaded"
	ModelUnloaded ModelStatus = "unloaded"
)

// Model represents a model known to the LM Studio instance.
type Model struct {
	// Stable identifier for the model.
	// example: qwen2.5-7b-instruct
	ID string `json:"id" example:"qwen2.5-7b-instruct"`
	// Human-friendly name. Falls back to the id when the server has none.
	// example: Qwen2.5 7B Instruct
	Name string `json:"name" example:"Qwen2.5 7B Instruct"`
	// Whether the model is currently loaded into memory.
	// example: loaded
	Status ModelStatus `json:"status" example:"loaded"`
}

// EvictionConfig governs when loaded models are unloaded by the server.
type EvictionConfig struct {
	// Idle time-to-live in seconds before a model is evicted.
	// example: 600
	TTLSeconds int `json:"ttlSeconds" example:"600"`
	// Whether idle models are evicted automatically.
	// example: true
	AutoEvict bool `json:"autoEvict" example:"true"`
	// Optional cap on concurrently loaded models; nil means unlimited.
	// example: 2
	MaxLoadedModels *int `json:"maxLoadedModels,omitempty" example:"2"`
}

// ServerConfig is a full snapshot of the server configuration.
type ServerConfig struct {
	Eviction EvictionConfig `json:"eviction"`
}

// EvictionPatch is a partial update of EvictionConfig. Nil fields are left untouched.
type EvictionPatch struct {
	TTLSeconds      *int  `json:"ttlSeconds,omitempty"`
	AutoEvict       *bool `json:"autoEvict,omitempty"`
	MaxLoadedModels *int  `json:"maxLoadedModels,omitempty"`
}

// ServerConfigPatch is a partial update of ServerConfig.
type ServerConfigPatch struct {
	Eviction *EvictionPatch `json:"eviction,omitempty"`
}

// ModelRuntimeStatus is the per-model part of ServerStatus.
type ModelRuntimeStatus struct {
	// example: qwen2.5-7b-instruct
	ModelID string `json:"modelId" example:"qwen2.5-7b-instruct"`
	// example: loaded
	State ModelStatus `json:"state" example:"loaded"`
	// Requests currently being served by this model.
	// example: 1
	ActiveRequests int `json:"activeRequests" example:"1"`
}

// ServerStatus is a read-only runtime snapshot of the server.
type ServerStatus struct {
	// example: 3600
	UptimeSeconds int64                `json:"uptimeSeconds" example:"3600"`
	Models        []ModelRuntimeStatus `json:"models"`
	// Number of models in the loaded state.
	// example: 1
	LoadedCount int `json:"loadedCount" example:"1"`
	// Resident memory of the server in bytes, when reported.
	// example: 8589934592
	MemoryUsageBytes *int64 `json:"memoryUsageBytes,omitempty" example:"8589934592"`
}

// TrainingStatus is the closed set of training job states.
type TrainingStatus string

const (
	TrainingQueued    TrainingStatus = "queued"
	TrainingRunning   TrainingStatus = "running"
	TrainingCompleted TrainingStatus = "completed"
	TrainingFailed    TrainingStatus = "failed"
)

// Valid reports whether s is one of the known training states.
func (s TrainingStatus) Valid() bool {
	switch s {
	case TrainingQueued, TrainingRunning, TrainingCompleted, TrainingFailed:
		return true
	}
	return false
}

// TrainingJob describes one fine-tuning job.
type TrainingJob struct {
	// example: job-42
	ID string `json:"id" example:"job-42"`
	// example: qwen2.5-7b-instruct
	ModelID string `json:"modelId" example:"qwen2.5-7b-instruct"`
	// example: running
	Status TrainingStatus `json:"status" example:"running"`
	// Progress in percent when the server reports it.
	// example: 40
	ProgressPercent *int `json:"progressPercent,omitempty" example:"40"`
}
