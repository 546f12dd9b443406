package assetcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	generateimage "scripture-analyzer-server/modules/generate-image"
)

// Workflow - the client-side generation flow: call the endpoint, materialize
// the returned image into the cache, and record fresh results in history.
// The three awaits are sequenced because each depends on the previous output.
type Workflow struct {
	endpoint string
	client   *http.Client
	mat      *Materializer
	history  *HistoryStore
}

// Outcome - what a screen needs to render the result
type Outcome struct {
	LocalURI    string
	Result      generateimage.GenerationResult
	FromHistory bool
}

// NewWorkflow - workflow posting to endpoint (e.g. "https://host/generate-image")
func NewWorkflow(endpoint string, mat *Materializer, history *HistoryStore) *Workflow {
	log.Printf("🗂  [Workflow] Caching images under %s", mat.Dir())
	return &Workflow{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		mat:     mat,
		history: history,
	}
}

// Generate - request a fresh image. Cancel the context to abandon the
// in-flight request when the user navigates away; the server still runs the
// call to completion, which is fine because it is stateless.
func (w *Workflow) Generate(ctx context.Context, req generateimage.GenerationRequest) (*Outcome, error) {
	result, err := w.callEndpoint(ctx, req)
	if err != nil {
		return nil, err
	}

	locator := locatorFor(result)
	if locator == "" {
		return nil, fmt.Errorf("generation response carried no image")
	}

	localURI, err := w.mat.Materialize(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("could not prepare image: %w", err)
	}

	// history is best-effort: a failed write must not block viewing the image
	entry := HistoryEntry{
		URI:    localURI,
		Ref:    result.Ref,
		Prompt: result.Prompt,
	}
	if err := w.history.Append(entry); err != nil {
		log.Printf("⚠️  [Workflow] History write failed (continuing): %v", err)
	}

	if _, err := Thumbnail(localURI); err != nil {
		log.Printf("⚠️  [Workflow] Thumbnail skipped: %v", err)
	}

	return &Outcome{
		LocalURI: localURI,
		Result:   *result,
	}, nil
}

// OpenFromHistory - re-open an existing entry. Never appends: history must
// not accumulate duplicates for the same asset.
func (w *Workflow) OpenFromHistory(ctx context.Context, entry HistoryEntry) (*Outcome, error) {
	localURI, err := w.mat.Materialize(ctx, entry.URI)
	if err != nil {
		return nil, fmt.Errorf("could not prepare image: %w", err)
	}
	return &Outcome{
		LocalURI: localURI,
		Result: generateimage.GenerationResult{
			Ref:    entry.Ref,
			Prompt: entry.Prompt,
		},
		FromHistory: true,
	}, nil
}

// callEndpoint - POST the request with cache-busting, mirroring how the app
// talks to the endpoint
func (w *Workflow) callEndpoint(ctx context.Context, genReq generateimage.GenerationRequest) (*generateimage.GenerationResult, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	runID := fmt.Sprintf("%d", time.Now().UnixMilli())
	url := fmt.Sprintf("%s?ts=%s", w.endpoint, runID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("X-Run-Id", runID)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp generateimage.ErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("generation failed (HTTP %d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("generation failed: HTTP %d", resp.StatusCode)
	}

	var result generateimage.GenerationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// locatorFor - collapse the response into one materializable locator.
// Remote URL wins when present; inline payloads become a data: URI.
func locatorFor(result *generateimage.GenerationResult) string {
	if result.ImageURL != "" {
		return result.ImageURL
	}
	if result.ImageB64 != "" {
		mime := result.Mime
		if mime == "" {
			mime = generateimage.DefaultMime
		}
		return fmt.Sprintf("data:%s;base64,%s", mime, result.ImageB64)
	}
	return ""
}
