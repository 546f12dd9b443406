package worker

import (
	generateimage "scripture-analyzer-server/modules/generate-image"
)

// GenerationJob - queued generation request, serialized into Redis
type GenerationJob struct {
	JobID   string                          `json:"job_id"`
	Request generateimage.GenerationRequest `json:"request"`
}

const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)
