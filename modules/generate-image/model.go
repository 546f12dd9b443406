package generateimage

// GenerationRequest - body of POST /generate-image.
// Only prompt is validated; the rest default as noted.
type GenerationRequest struct {
	Prompt    string `json:"prompt"`
	Ref       string `json:"ref,omitempty"`
	Size      string `json:"size,omitempty"`      // "512" | "768" | "1024", passed through best-effort
	Quality   string `json:"quality,omitempty"`   // "fast" | "standard" | "high", passed through
	Diversity string `json:"diversity,omitempty"` // opaque token seeding variation selection
}

// GenerationResult - success body. Exactly one of ImageB64 / ImageURL
// is populated; Prompt echoes the final variation-injected text.
type GenerationResult struct {
	Mime     string `json:"mime"`
	ImageB64 string `json:"image_b64,omitempty"`
	ImageURL string `json:"image,omitempty"`
	Ref      string `json:"ref"`
	Prompt   string `json:"prompt"`
}

// ErrorResponse - structured error body used on every failure path
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	DefaultSize    = "1024"
	DefaultQuality = "standard"
	DefaultMime    = "image/png"
)
