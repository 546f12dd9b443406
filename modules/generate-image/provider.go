package generateimage

import (
	"context"
	"errors"
	"fmt"
)

// ImagePayload - normalized provider output. Providers return inline bytes or
// a remote locator; the adapter resolves which one exactly once, downstream
// code never re-sniffs response shapes.
type ImagePayload interface {
	isImagePayload()
}

// InlinePayload - image delivered as base64 text
type InlinePayload struct {
	Mime   string
	Base64 string
}

// RemotePayload - image delivered as a fetchable URL
type RemotePayload struct {
	URL string
}

func (InlinePayload) isImagePayload() {}
func (RemotePayload) isImagePayload() {}

// GenerateOptions - best-effort metadata passed through to the provider.
// Providers are not guaranteed to honor size/quality exactly.
type GenerateOptions struct {
	Size    string
	Quality string
	Ref     string
}

// ImageProvider - the outbound generation port. Implementations are stateless
// and safe for concurrent use.
type ImageProvider interface {
	Generate(ctx context.Context, finalPrompt string, opts GenerateOptions) (ImagePayload, error)
}

// ErrEmptyResult - the provider answered successfully but carried no usable
// image. Distinct from ProviderError: this maps to 502, not a passthrough.
var ErrEmptyResult = errors.New("no image returned from model")

// ProviderError - the upstream call itself failed (auth, rate limit, network).
// StatusCode is the upstream HTTP status when known, 0 otherwise.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}
