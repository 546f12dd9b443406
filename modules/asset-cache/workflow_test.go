package assetcache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	generateimage "scripture-analyzer-server/modules/generate-image"
)

func newTestWorkflow(t *testing.T, handler http.HandlerFunc) (*Workflow, *HistoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	history := NewHistoryStore(filepath.Join(dir, "image_history.json"))
	mat := NewMaterializer(filepath.Join(dir, "generated-images"))
	return NewWorkflow(srv.URL+"/generate-image", mat, history), history
}

func TestWorkflowGenerate_InlineResult(t *testing.T) {
	var gotReq generateimage.GenerationRequest
	var gotRunID string

	wf, history := newTestWorkflow(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		gotRunID = r.Header.Get("X-Run-Id")
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.NotEmpty(t, r.URL.Query().Get("ts"))

		json.NewEncoder(w).Encode(generateimage.GenerationResult{
			Mime:     "image/png",
			ImageB64: base64.StdEncoding.EncodeToString(pngBytes),
			Ref:      "Psalm 23:1",
			Prompt:   "composed prompt text",
		})
	})

	outcome, err := wf.Generate(context.Background(), generateimage.GenerationRequest{
		Prompt: "A shepherd in a field",
		Ref:    "Psalm 23:1",
	})
	require.NoError(t, err)

	assert.Equal(t, "A shepherd in a field", gotReq.Prompt)
	assert.NotEmpty(t, gotRunID)
	assert.False(t, outcome.FromHistory)

	written, err := os.ReadFile(outcome.LocalURI)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, written)

	entries := history.List()
	require.Len(t, entries, 1, "a fresh generation records exactly one entry")
	assert.Equal(t, outcome.LocalURI, entries[0].URI)
	assert.Equal(t, "Psalm 23:1", entries[0].Ref)
	assert.Equal(t, "composed prompt text", entries[0].Prompt)
}

func TestWorkflowGenerate_RemoteResult(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer imgSrv.Close()

	wf, history := newTestWorkflow(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateimage.GenerationResult{
			Mime:     "image/png",
			ImageURL: imgSrv.URL + "/out.png",
			Ref:      "John 3:16",
		})
	})

	outcome, err := wf.Generate(context.Background(), generateimage.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)

	written, err := os.ReadFile(outcome.LocalURI)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, written)
	assert.Len(t, history.List(), 1)
}

func TestWorkflowGenerate_ServerErrorSurfaced(t *testing.T) {
	wf, history := newTestWorkflow(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(generateimage.ErrorResponse{Error: "No image returned from model"})
	})

	_, err := wf.Generate(context.Background(), generateimage.GenerationRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.Contains(t, err.Error(), "No image returned from model")
	assert.Empty(t, history.List(), "failed generations must not be recorded")
}

func TestWorkflowGenerate_EmptyResponseBody(t *testing.T) {
	wf, history := newTestWorkflow(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateimage.GenerationResult{Ref: "Psalm 23:1"})
	})

	_, err := wf.Generate(context.Background(), generateimage.GenerationRequest{Prompt: "p"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image")
	assert.Empty(t, history.List())
}

func TestWorkflowOpenFromHistory_NeverAppends(t *testing.T) {
	wf, history := newTestWorkflow(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("opening from history must not touch the endpoint")
	})

	local := filepath.Join(t.TempDir(), "verse-100-abcd1234.png")
	require.NoError(t, os.WriteFile(local, pngBytes, 0o644))
	require.NoError(t, history.Append(HistoryEntry{Ts: 100, URI: local, Ref: "Psalm 23:1", Prompt: "old prompt"}))

	outcome, err := wf.OpenFromHistory(context.Background(), history.List()[0])
	require.NoError(t, err)

	assert.True(t, outcome.FromHistory)
	assert.Equal(t, local, outcome.LocalURI)
	assert.Equal(t, "Psalm 23:1", outcome.Result.Ref)
	assert.Len(t, history.List(), 1, "re-opening must not grow history")
}

func TestLocatorFor(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a.png",
		locatorFor(&generateimage.GenerationResult{ImageURL: "https://cdn.example.com/a.png", ImageB64: "aW1n"}),
		"remote URL wins over inline payload")

	assert.Equal(t, "data:image/webp;base64,aW1n",
		locatorFor(&generateimage.GenerationResult{Mime: "image/webp", ImageB64: "aW1n"}))

	assert.Equal(t, "data:image/png;base64,aW1n",
		locatorFor(&generateimage.GenerationResult{ImageB64: "aW1n"}),
		"missing mime defaults to png")

	assert.Empty(t, locatorFor(&generateimage.GenerationResult{Ref: "Psalm 23:1"}))
}
