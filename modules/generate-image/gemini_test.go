package generateimage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func stubGemini(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  "test-key",
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: srv.URL,
		},
	})
	require.NoError(t, err)
	return &GeminiProvider{client: client, model: "gemini-2.5-flash-image"}
}

func inlineDataResponse(mime, b64 string) map[string]any {
	part := map[string]any{
		"inlineData": map[string]any{"mimeType": mime, "data": b64},
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": []map[string]any{part}}},
		},
	}
}

func TestGeminiProvider_InlineImage(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4E, 0x47, 0x01, 0x02, 0x03}
	b64 := base64.StdEncoding.EncodeToString(raw)

	var gotPath string
	provider := stubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(inlineDataResponse("image/png", b64))
	})

	payload, err := provider.Generate(context.Background(), "final prompt text", GenerateOptions{})
	require.NoError(t, err)

	inline, ok := payload.(InlinePayload)
	require.True(t, ok)
	assert.Equal(t, "image/png", inline.Mime)
	assert.Equal(t, b64, inline.Base64, "inline bytes must survive the decode/re-encode round-trip")
	assert.True(t, strings.Contains(gotPath, "gemini-2.5-flash-image"), "request must target the configured model")
}

func TestGeminiProvider_MissingMimeDefaultsToPng(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02})
	provider := stubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(inlineDataResponse("", b64))
	})

	payload, err := provider.Generate(context.Background(), "p", GenerateOptions{})
	require.NoError(t, err)

	inline, ok := payload.(InlinePayload)
	require.True(t, ok)
	assert.Equal(t, DefaultMime, inline.Mime)
}

func TestGeminiProvider_TextOnlyAnswerIsEmptyResult(t *testing.T) {
	provider := stubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []map[string]any{
					{"text": "I cannot draw that"},
				}}},
			},
		})
	})

	_, err := provider.Generate(context.Background(), "p", GenerateOptions{})
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestGeminiProvider_NoCandidatesIsEmptyResult(t *testing.T) {
	provider := stubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := provider.Generate(context.Background(), "p", GenerateOptions{})
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestGeminiProvider_UpstreamErrorCarriesStatus(t *testing.T) {
	provider := stubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    429,
				"message": "quota exceeded",
				"status":  "RESOURCE_EXHAUSTED",
			},
		})
	})

	_, err := provider.Generate(context.Background(), "p", GenerateOptions{})

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
	assert.Contains(t, provErr.Message, "quota exceeded")
}
