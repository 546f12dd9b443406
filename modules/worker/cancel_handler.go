package worker

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	redisutil "scripture-analyzer-server/modules/common/redis"
)

// CancelHandler - user-initiated job cancellation
type CancelHandler struct {
	rdb *redis.Client
}

func NewCancelHandler(rdb *redis.Client) *CancelHandler {
	if rdb == nil {
		log.Println("⚠️ [CancelHandler] No Redis connection, handler disabled")
		return nil
	}
	return &CancelHandler{rdb: rdb}
}

// RegisterRoutes - route wiring
func (h *CancelHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/generate-image/jobs/{jobId}/cancel", h.CancelJob).Methods("POST", "OPTIONS")
	log.Println("✅ [CancelHandler] Routes registered: POST /api/generate-image/jobs/{jobId}/cancel")
}

// CancelJob - raise the cancel flag. A job already at the provider runs to
// completion; the worker discards the result before it is stored.
func (h *CancelHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)
	jobID := vars["jobId"]
	if jobID == "" {
		http.Error(w, `{"error": "jobId is required"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🛑 [CancelHandler] Cancel requested for job: %s", jobID)

	if err := redisutil.SetJobCancelled(r.Context(), h.rdb, jobID); err != nil {
		log.Printf("❌ [CancelHandler] Failed to set cancel flag: %v", err)
		http.Error(w, `{"error": "Failed to set cancel flag"}`, http.StatusInternalServerError)
		return
	}

	if err := redisutil.SetJobStatus(r.Context(), h.rdb, jobID, StatusUserCancelled); err != nil {
		log.Printf("⚠️  [CancelHandler] Failed to update status: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"job_id": jobID,
		"status": StatusUserCancelled,
	})
}
