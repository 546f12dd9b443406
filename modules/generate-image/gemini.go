package generateimage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"google.golang.org/genai"
)

// GeminiProvider - ImageProvider backed by the Gemini API. Gemini always
// answers with InlineData, so this adapter only ever yields inline payloads.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider - create the provider; the client is reused across requests
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Generate - call Gemini and extract the first InlineData part
func (p *GeminiProvider) Generate(ctx context.Context, finalPrompt string, opts GenerateOptions) (ImagePayload, error) {
	log.Printf("🎨 Calling Gemini API (model: %s, prompt length: %d, ref: %s)",
		p.model, len(finalPrompt), opts.Ref)

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromText(finalPrompt),
		},
	}

	result, err := p.client.Models.GenerateContent(
		ctx,
		p.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: "1:1",
			},
		},
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return nil, &ProviderError{Message: err.Error()}
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				log.Printf("✅ Received image from Gemini: %d bytes", len(part.InlineData.Data))
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = DefaultMime
				}
				return InlinePayload{
					Mime:   mime,
					Base64: base64.StdEncoding.EncodeToString(part.InlineData.Data),
				}, nil
			}
		}
	}

	return nil, ErrEmptyResult
}
