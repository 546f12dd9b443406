package generateimage

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider - ImageProvider backed by the OpenAI Images API
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider - create the provider with an API key and image model
func NewOpenAIProvider(apiKey, model string, opts ...option.RequestOption) *OpenAIProvider {
	allOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(allOpts...)
	return &OpenAIProvider{
		client: &client,
		model:  model,
	}
}

// Generate - call the Images API and normalize the response shape.
// gpt-image-1 answers with inline base64, dall-e models default to a URL;
// both collapse into the tagged payload here.
func (p *OpenAIProvider) Generate(ctx context.Context, finalPrompt string, opts GenerateOptions) (ImagePayload, error) {
	params := openai.ImageGenerateParams{
		Model:  openai.ImageModel(p.model),
		Prompt: finalPrompt,
		N:      openai.Int(1),
	}

	if size := providerSize(opts.Size); size != "" {
		params.Size = openai.ImageGenerateParamsSize(size)
	}
	if opts.Quality != "" && opts.Quality != DefaultQuality {
		params.Quality = openai.ImageGenerateParamsQuality(opts.Quality)
	}

	log.Printf("🎨 Calling OpenAI Images API (model: %s, prompt length: %d, ref: %s)",
		p.model, len(finalPrompt), opts.Ref)

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		}
		return nil, &ProviderError{Message: err.Error()}
	}

	for _, img := range resp.Data {
		if img.B64JSON != "" {
			log.Printf("✅ Received inline image from OpenAI: %d chars", len(img.B64JSON))
			return InlinePayload{Mime: DefaultMime, Base64: img.B64JSON}, nil
		}
		if img.URL != "" {
			log.Printf("✅ Received image URL from OpenAI")
			return RemotePayload{URL: img.URL}, nil
		}
	}

	return nil, ErrEmptyResult
}

// providerSize - best-effort mapping of the request's size token onto the
// provider enum. Unknown tokens fall back to the provider default.
func providerSize(size string) string {
	switch size {
	case "", DefaultSize:
		return "1024x1024"
	case "512":
		return "512x512"
	case "768":
		return "1024x1024" // closest supported square
	}
	if strings.Contains(size, "x") {
		return size
	}
	return ""
}
