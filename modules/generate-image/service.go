package generateimage

import (
	"context"
	"fmt"
	"log"
	"strings"

	"scripture-analyzer-server/modules/common/config"
	"scripture-analyzer-server/modules/common/fallback"
)

// Service - orchestrates variation selection, prompt composition and the
// provider call. Stateless; one instance serves all requests.
type Service struct {
	provider ImageProvider
}

// NewService - build the service from the configured provider
func NewService() (*Service, error) {
	cfg := config.GetConfig()

	switch cfg.ImageProvider {
	case "openai":
		return &Service{provider: NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIImageModel)}, nil
	case "gemini":
		provider, err := NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return &Service{provider: provider}, nil
	}
	return nil, fmt.Errorf("unknown image provider: %s", cfg.ImageProvider)
}

// NewServiceWithProvider - used by the async worker and by tests
func NewServiceWithProvider(provider ImageProvider) *Service {
	return &Service{provider: provider}
}

// ErrMissingPrompt - returned before any provider call is attempted
var ErrMissingPrompt = fmt.Errorf("missing prompt")

// Generate - run the full request pipeline for one generation.
// The prompt must be non-empty after trimming; everything else defaults.
func (s *Service) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrMissingPrompt
	}

	size := fallback.SafeString(req.Size, DefaultSize)
	quality := fallback.SafeString(req.Quality, DefaultQuality)

	spice := SelectVariation(req.Diversity)
	finalPrompt := ComposePrompt(req.Prompt, spice, req.Diversity)

	log.Printf("📝 Composed prompt for ref %q (variation: %s, %d chars)", req.Ref, spice, len(finalPrompt))

	payload, err := s.provider.Generate(ctx, finalPrompt, GenerateOptions{
		Size:    size,
		Quality: quality,
		Ref:     req.Ref,
	})
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{
		Mime:   DefaultMime,
		Ref:    req.Ref,
		Prompt: finalPrompt,
	}

	switch p := payload.(type) {
	case InlinePayload:
		if p.Base64 == "" {
			return nil, ErrEmptyResult
		}
		result.Mime = fallback.SafeString(p.Mime, DefaultMime)
		result.ImageB64 = p.Base64
	case RemotePayload:
		if p.URL == "" {
			return nil, ErrEmptyResult
		}
		result.ImageURL = p.URL
	default:
		return nil, ErrEmptyResult
	}

	return result, nil
}
