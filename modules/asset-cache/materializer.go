package assetcache

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dataURIPattern - matches the mime portion of an inline data locator
var dataURIPattern = regexp.MustCompile(`^data:(.*?);base64,`)

// Materializer - turns any accepted image locator into a stable local file
// inside a dedicated cache subdirectory. Locators are disambiguated by
// literal prefix: data: → decode, http(s):// → download, anything else is
// treated as already local and returned unchanged.
type Materializer struct {
	dir    string
	client *http.Client
}

// NewMaterializer - materializer writing into cacheDir
func NewMaterializer(cacheDir string) *Materializer {
	return &Materializer{
		dir: cacheDir,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Dir - the cache subdirectory files are written into
func (m *Materializer) Dir() string {
	return m.dir
}

// Materialize - resolve a locator to a readable local file path
func (m *Materializer) Materialize(ctx context.Context, locator string) (string, error) {
	if strings.HasPrefix(locator, "data:") {
		return m.writeInline(locator)
	}
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return m.download(ctx, locator)
	}
	// unrecognized shapes are trusted as local references; providers sometimes
	// hand back opaque local-looking identifiers
	log.Printf("🔍 [Materializer] Treating locator as already-local: %.60s", locator)
	return locator, nil
}

// writeInline - decode a data: URI and write the bytes
func (m *Materializer) writeInline(locator string) (string, error) {
	mime := "image/png"
	if match := dataURIPattern.FindStringSubmatch(locator); match != nil && match[1] != "" {
		mime = match[1]
	}

	idx := strings.Index(locator, ",")
	payload := ""
	if idx >= 0 {
		payload = locator[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", &DecodeError{Cause: err}
	}

	return m.writeFile(data, extForMime(mime))
}

// download - fetch a remote image and write the bytes
func (m *Materializer) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &DownloadError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	return m.writeFile(data, "png")
}

// writeFile - write bytes under a collision-proof name. Timestamp alone is
// not unique under rapid successive calls, so a random suffix is appended.
func (m *Materializer) writeFile(data []byte, ext string) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	name := fmt.Sprintf("verse-%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	path := filepath.Join(m.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	log.Printf("✅ [Materializer] Wrote %d bytes to %s", len(data), name)
	return path, nil
}

func extForMime(mime string) string {
	switch {
	case strings.Contains(mime, "png"):
		return "png"
	case strings.Contains(mime, "jpeg"), strings.Contains(mime, "jpg"):
		return "jpg"
	case strings.Contains(mime, "webp"):
		return "webp"
	}
	return "png"
}
