package types

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of known models.
	Models []Model `json:"models"`
}

// TrainingJobsResponse wraps the list returned by GET /training/jobs.
type TrainingJobsResponse struct {
	Jobs []TrainingJob `json:"jobs"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model id is required
	Error string `json:"error" example:"model id is required"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Error kind as reported by the client layer.
	// example: validation
	Kind string `json:"kind,omitempty" example:"validation"`
}

// ActionResponse acknowledges a load/unload request.
type ActionResponse struct {
	// example: qwen2.5-7b-instruct
	ModelID string `json:"modelId" example:"qwen2.5-7b-instruct"`
	// example: load
	Action string `json:"action" example:"load"`
	// example: true
	OK bool `json:"ok" example:"true"`
}
