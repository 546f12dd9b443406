package generateimage

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// GenerateImageHandler - HTTP surface for the synchronous generation endpoint
type GenerateImageHandler struct {
	service *Service
}

func NewGenerateImageHandler(service *Service) *GenerateImageHandler {
	return &GenerateImageHandler{
		service: service,
	}
}

// GenerateImage - POST /generate-image
// Every response path, success and error alike, is marked non-cacheable:
// identical requests are expected to produce different images.
func (h *GenerateImageHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	setNoStoreHeaders(w)
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		status, msg := mapGenerationError(err)
		log.Printf("❌ Generation failed for ref %q: %v", req.Ref, err)
		writeError(w, status, msg)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("⚠️  Failed to encode generation response: %v", err)
	}
}

// mapGenerationError - error taxonomy → HTTP status
//   - missing prompt: client-fixable 400
//   - empty provider result: 502 (provider contract issue, not caller input)
//   - provider failure: upstream status passthrough where known, else 500
func mapGenerationError(err error) (int, string) {
	if errors.Is(err, ErrMissingPrompt) {
		return http.StatusBadRequest, "Missing prompt"
	}
	if errors.Is(err, ErrEmptyResult) {
		return http.StatusBadGateway, "No image returned from model"
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		if provErr.StatusCode >= 400 && provErr.StatusCode <= 599 {
			return provErr.StatusCode, provErr.Message
		}
		return http.StatusInternalServerError, provErr.Message
	}

	return http.StatusInternalServerError, err.Error()
}

func setNoStoreHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
