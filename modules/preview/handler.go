package preview

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"scripture-analyzer-server/modules/common/fallback"
	generateimage "scripture-analyzer-server/modules/generate-image"
)

// PreviewHandler serves the Preview screen: it composes the exact final
// prompt the generation endpoint would send, without touching the provider.
type PreviewHandler struct{}

type PreviewRequest struct {
	Prompt    string `json:"prompt"`
	Ref       string `json:"ref,omitempty"`
	Diversity string `json:"diversity,omitempty"`
}

type PreviewResponse struct {
	FinalPrompt string `json:"final_prompt"`
	Variation   string `json:"variation"`
	Ref         string `json:"ref"`
	PreviewURL  string `json:"previewUrl"`
}

// NewPreviewHandler creates a handler instance.
func NewPreviewHandler() *PreviewHandler {
	return &PreviewHandler{}
}

// RegisterRoutes wires preview endpoints.
func (h *PreviewHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/preview-prompt", h.handlePreview).Methods("POST", "OPTIONS")
}

// handlePreview runs the same variation selection and composition as the
// generation pipeline. PreviewURL is a placeholder pixel so the screen has
// something to render before the real image exists.
func (h *PreviewHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "missing prompt", http.StatusBadRequest)
		return
	}

	variation := generateimage.SelectVariation(req.Diversity)

	resp := PreviewResponse{
		FinalPrompt: generateimage.ComposePrompt(req.Prompt, variation, req.Diversity),
		Variation:   variation,
		Ref:         req.Ref,
		PreviewURL:  fallback.PlaceholderDataURI(),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
}
