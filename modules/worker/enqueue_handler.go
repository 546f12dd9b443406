package worker

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	redisutil "scripture-analyzer-server/modules/common/redis"
	generateimage "scripture-analyzer-server/modules/generate-image"
)

// EnqueueHandler - accepts generation jobs and pushes them onto the Redis queue
type EnqueueHandler struct {
	rdb *redis.Client
}

// EnqueueResponse - enqueue result
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"job_id,omitempty"`
	Status        string `json:"status,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// NewEnqueueHandler - EnqueueHandler with a live Redis connection
func NewEnqueueHandler(rdb *redis.Client) *EnqueueHandler {
	if rdb == nil {
		log.Println("⚠️ [Enqueue] No Redis connection, handler disabled")
		return nil
	}
	log.Println("✅ [Enqueue] Handler initialized with Redis connection")
	return &EnqueueHandler{
		rdb: rdb,
	}
}

// RegisterRoutes - route wiring
func (h *EnqueueHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/generate-image/jobs", h.HandleEnqueue).Methods("POST", "OPTIONS")
	log.Println("✅ Enqueue routes registered: POST /api/generate-image/jobs")
}

// HandleEnqueue - POST /api/generate-image/jobs
func (h *EnqueueHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req generateimage.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Enqueue] Invalid request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	// same validation gate as the synchronous endpoint
	if strings.TrimSpace(req.Prompt) == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "Missing prompt",
		})
		return
	}

	job := GenerationJob{
		JobID:   uuid.NewString(),
		Request: req,
	}

	payload, err := json.Marshal(job)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(EnqueueResponse{Success: false, Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := redisutil.SaveJobData(ctx, h.rdb, job.JobID, payload); err != nil {
		log.Printf("❌ [Enqueue] Failed to save job data: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(EnqueueResponse{Success: false, Error: err.Error()})
		return
	}

	if err := redisutil.SetJobStatus(ctx, h.rdb, job.JobID, StatusPending); err != nil {
		log.Printf("⚠️  [Enqueue] Failed to set initial status: %v", err)
	}

	queueLen, err := redisutil.Enqueue(ctx, h.rdb, job.JobID)
	if err != nil {
		log.Printf("❌ [Enqueue] Redis LPUSH failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(EnqueueResponse{Success: false, Error: err.Error()})
		return
	}

	log.Printf("✅ [Enqueue] Job %s enqueued successfully (position: %d)", job.JobID, queueLen)

	json.NewEncoder(w).Encode(EnqueueResponse{
		Success:       true,
		JobID:         job.JobID,
		Status:        StatusPending,
		Queue:         redisutil.QueueKey,
		QueuePosition: queueLen,
	})
}
