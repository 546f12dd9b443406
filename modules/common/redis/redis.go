package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"scripture-analyzer-server/modules/common/config"
)

const (
	// QueueKey - list the worker BRPOPs from
	QueueKey = "jobs:queue"

	// jobTTL - how long queued jobs and their results stay around
	jobTTL = time.Hour
)

// Connect - create the Redis client
func Connect(cfg *config.Config) *redis.Client {
	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // managed Redis with re-signed certs
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Printf("🔍 Testing Redis connection...")
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed: %v", err)
		return nil
	}

	return rdb
}

func jobDataKey(jobID string) string   { return fmt.Sprintf("jobs:data:%s", jobID) }
func jobStatusKey(jobID string) string { return fmt.Sprintf("jobs:status:%s", jobID) }
func jobResultKey(jobID string) string { return fmt.Sprintf("jobs:result:%s", jobID) }
func jobCancelKey(jobID string) string { return fmt.Sprintf("jobs:cancel:%s", jobID) }

// SaveJobData - store the serialized job payload
func SaveJobData(ctx context.Context, rdb *redis.Client, jobID string, payload []byte) error {
	return rdb.Set(ctx, jobDataKey(jobID), payload, jobTTL).Err()
}

// LoadJobData - fetch the serialized job payload
func LoadJobData(ctx context.Context, rdb *redis.Client, jobID string) ([]byte, error) {
	data, err := rdb.Get(ctx, jobDataKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return data, err
}

// Enqueue - LPUSH the job onto the queue; returns the queue length
func Enqueue(ctx context.Context, rdb *redis.Client, jobID string) (int64, error) {
	if _, err := rdb.LPush(ctx, QueueKey, jobID).Result(); err != nil {
		return 0, err
	}
	return rdb.LLen(ctx, QueueKey).Result()
}

// SetJobStatus - update the job status flag
func SetJobStatus(ctx context.Context, rdb *redis.Client, jobID, status string) error {
	return rdb.Set(ctx, jobStatusKey(jobID), status, jobTTL).Err()
}

// GetJobStatus - returns "" when the job is unknown
func GetJobStatus(ctx context.Context, rdb *redis.Client, jobID string) (string, error) {
	status, err := rdb.Get(ctx, jobStatusKey(jobID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return status, err
}

// SaveJobResult - store the serialized generation result
func SaveJobResult(ctx context.Context, rdb *redis.Client, jobID string, payload []byte) error {
	return rdb.Set(ctx, jobResultKey(jobID), payload, jobTTL).Err()
}

// LoadJobResult - returns nil when no result has been written yet
func LoadJobResult(ctx context.Context, rdb *redis.Client, jobID string) ([]byte, error) {
	data, err := rdb.Get(ctx, jobResultKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetJobCancelled - raise the cancel flag the worker checks before generating
func SetJobCancelled(ctx context.Context, rdb *redis.Client, jobID string) error {
	return rdb.Set(ctx, jobCancelKey(jobID), "1", jobTTL).Err()
}

// IsJobCancelled - check the cancel flag
func IsJobCancelled(ctx context.Context, rdb *redis.Client, jobID string) bool {
	val, err := rdb.Get(ctx, jobCancelKey(jobID)).Result()
	if err != nil {
		return false
	}
	return val == "1"
}
