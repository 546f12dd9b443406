package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"scripture-analyzer-server/modules/common/config"
	redisutil "scripture-analyzer-server/modules/common/redis"
	generateimage "scripture-analyzer-server/modules/generate-image"
	"scripture-analyzer-server/modules/preview"
	"scripture-analyzer-server/modules/progress"
	"scripture-analyzer-server/modules/worker"
)

// enableCORS - the mobile app calls from arbitrary origins
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Cache-Control, Pragma, X-Run-Id")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimit - global limiter shielding the upstream provider, not a user quota
func rateLimit(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodOptions && !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Too many requests, slow down",
			})
			return
		}
		next(w, r)
	}
}

// healthCheck - liveness endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "scripture-analyzer",
	})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	service, err := generateimage.NewService()
	if err != nil {
		log.Fatalf("❌ Failed to initialize generation service: %v", err)
	}

	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")

	// synchronous generation endpoint, rate limited
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPM)/60.0), cfg.RateLimitRPM)
	genHandler := generateimage.NewGenerateImageHandler(service)
	r.HandleFunc("/generate-image", rateLimit(limiter, genHandler.GenerateImage)).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/generate-image", rateLimit(limiter, genHandler.GenerateImage)).Methods("POST", "OPTIONS")
	log.Println("✅ Generate Image routes registered: /generate-image, /api/generate-image")

	preview.NewPreviewHandler().RegisterRoutes(r)

	// async queue needs Redis; without it the synchronous endpoint still works
	if rdb := redisutil.Connect(cfg); rdb != nil {
		log.Println("✅ Redis connected successfully")

		hub := progress.NewHub()
		r.HandleFunc("/ws", hub.HandleWebSocket)

		if enqueue := worker.NewEnqueueHandler(rdb); enqueue != nil {
			enqueue.RegisterRoutes(r)
		}
		if status := worker.NewStatusHandler(rdb); status != nil {
			status.RegisterRoutes(r)
		}
		if cancel := worker.NewCancelHandler(rdb); cancel != nil {
			cancel.RegisterRoutes(r)
		}

		go worker.StartWorker(rdb, service, hub)
	} else {
		log.Println("⚠️  Redis unavailable, async job queue disabled")
	}

	log.Printf("🚀 Scripture Analyzer server starting on port %s", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("🎨 Generate: POST http://localhost:%s/generate-image", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
