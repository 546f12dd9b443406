package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	redisutil "scripture-analyzer-server/modules/common/redis"
	generateimage "scripture-analyzer-server/modules/generate-image"
	"scripture-analyzer-server/modules/progress"
)

// maxConcurrentJobs - cap on simultaneous provider calls
const maxConcurrentJobs = 2

// StartWorker - Redis queue worker loop. Blocks; run in a goroutine.
func StartWorker(rdb *redis.Client, service *generateimage.Service, hub *progress.Hub) {
	log.Println("🔄 Redis Queue Worker starting...")
	log.Printf("👀 Watching queue: %s", redisutil.QueueKey)

	ctx := context.Background()
	semaphore := make(chan struct{}, maxConcurrentJobs)

	for {
		result, err := rdb.BRPop(ctx, 0, redisutil.QueueKey).Result()
		if err != nil {
			log.Printf("❌ Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0] is the queue name, result[1] the job id
		jobID := result[1]
		log.Printf("🎯 Received new job: %s", jobID)

		semaphore <- struct{}{}
		go func(jobID string) {
			defer func() { <-semaphore }()
			processJob(ctx, rdb, service, hub, jobID)
		}(jobID)
	}
}

// processJob - run one queued generation end to end
func processJob(ctx context.Context, rdb *redis.Client, service *generateimage.Service, hub *progress.Hub, jobID string) {
	log.Printf("🚀 Processing job: %s", jobID)

	data, err := redisutil.LoadJobData(ctx, rdb, jobID)
	if err != nil {
		log.Printf("❌ Failed to fetch job %s: %v", jobID, err)
		return
	}

	var job GenerationJob
	if err := json.Unmarshal(data, &job); err != nil {
		log.Printf("❌ Failed to parse job %s: %v", jobID, err)
		setStatus(ctx, rdb, hub, jobID, StatusFailed, "corrupt job payload")
		return
	}

	// cancel check before any provider work
	if redisutil.IsJobCancelled(ctx, rdb, jobID) {
		log.Printf("🛑 Job %s cancelled before generation, skipping", jobID)
		setStatus(ctx, rdb, hub, jobID, StatusUserCancelled, "")
		return
	}

	setStatus(ctx, rdb, hub, jobID, StatusProcessing, "")

	result, err := service.Generate(ctx, job.Request)
	if err != nil {
		log.Printf("❌ Job %s generation failed: %v", jobID, err)
		setStatus(ctx, rdb, hub, jobID, StatusFailed, err.Error())
		return
	}

	// cancel check after generation, before the result becomes visible
	if redisutil.IsJobCancelled(ctx, rdb, jobID) {
		log.Printf("🛑 Job %s cancelled after generation, discarding result", jobID)
		setStatus(ctx, rdb, hub, jobID, StatusUserCancelled, "")
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("❌ Job %s: failed to marshal result: %v", jobID, err)
		setStatus(ctx, rdb, hub, jobID, StatusFailed, err.Error())
		return
	}

	if err := redisutil.SaveJobResult(ctx, rdb, jobID, payload); err != nil {
		log.Printf("❌ Job %s: failed to store result: %v", jobID, err)
		setStatus(ctx, rdb, hub, jobID, StatusFailed, err.Error())
		return
	}

	setStatus(ctx, rdb, hub, jobID, StatusCompleted, "")
	log.Printf("🏁 Job %s finished", jobID)
}

// setStatus - persist the status flag and push it to any loading screens
func setStatus(ctx context.Context, rdb *redis.Client, hub *progress.Hub, jobID, status, errMsg string) {
	if err := redisutil.SetJobStatus(ctx, rdb, jobID, status); err != nil {
		log.Printf("⚠️  Failed to update status for %s: %v", jobID, err)
	}
	if hub != nil {
		hub.Publish(progress.JobUpdate{JobID: jobID, Status: status, Error: errMsg})
	}
}
