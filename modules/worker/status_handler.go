package worker

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	redisutil "scripture-analyzer-server/modules/common/redis"
	generateimage "scripture-analyzer-server/modules/generate-image"
)

// StatusHandler - job status polling for clients without a websocket
type StatusHandler struct {
	rdb *redis.Client
}

// StatusResponse - current job state, with the result attached once completed
type StatusResponse struct {
	JobID  string                          `json:"job_id"`
	Status string                          `json:"status"`
	Result *generateimage.GenerationResult `json:"result,omitempty"`
}

func NewStatusHandler(rdb *redis.Client) *StatusHandler {
	if rdb == nil {
		return nil
	}
	return &StatusHandler{rdb: rdb}
}

// RegisterRoutes - route wiring
func (h *StatusHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/generate-image/jobs/{jobId}", h.GetJobStatus).Methods("GET")
	log.Println("✅ Status routes registered: GET /api/generate-image/jobs/{jobId}")
}

// GetJobStatus - GET /api/generate-image/jobs/{jobId}
func (h *StatusHandler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

	vars := mux.Vars(r)
	jobID := vars["jobId"]

	status, err := redisutil.GetJobStatus(r.Context(), h.rdb, jobID)
	if err != nil {
		log.Printf("❌ [Status] Failed to read job status: %v", err)
		http.Error(w, `{"error": "Failed to read job status"}`, http.StatusInternalServerError)
		return
	}
	if status == "" {
		http.Error(w, `{"error": "Job not found"}`, http.StatusNotFound)
		return
	}

	resp := StatusResponse{JobID: jobID, Status: status}

	if status == StatusCompleted {
		data, err := redisutil.LoadJobResult(r.Context(), h.rdb, jobID)
		if err != nil {
			log.Printf("⚠️  [Status] Failed to load result for %s: %v", jobID, err)
		} else if data != nil {
			var result generateimage.GenerationResult
			if err := json.Unmarshal(data, &result); err == nil {
				resp.Result = &result
			}
		}
	}

	json.NewEncoder(w).Encode(resp)
}
