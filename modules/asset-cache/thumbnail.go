package assetcache

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log"
	"os"
	"strings"

	_ "github.com/kolesa-team/go-webp/decoder" // register WebP decoder
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

const (
	thumbMaxSide = 256
	thumbQuality = 80.0
)

// Thumbnail - write a small lossy WebP next to the source image for the
// history grid. Returns the thumbnail path.
func Thumbnail(srcPath string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to read source image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode source image: %w", err)
	}
	log.Printf("🔍 [Thumbnail] Decoded %s image for %s", format, srcPath)

	scaled := scaleDown(img, thumbMaxSide)

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, thumbQuality)
	if err != nil {
		return "", fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, scaled, options); err != nil {
		return "", fmt.Errorf("failed to encode WebP thumbnail: %w", err)
	}

	thumbPath := thumbnailPath(srcPath)
	if err := os.WriteFile(thumbPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}

	log.Printf("✅ [Thumbnail] %s: %d bytes → %d bytes", thumbPath, len(data), buf.Len())
	return thumbPath, nil
}

func thumbnailPath(srcPath string) string {
	if idx := strings.LastIndex(srcPath, "."); idx > 0 {
		return srcPath[:idx] + "-thumb.webp"
	}
	return srcPath + "-thumb.webp"
}

// scaleDown - nearest-neighbor fit inside maxSide, keeping aspect ratio.
// Images already small enough pass through untouched.
func scaleDown(src image.Image, maxSide int) image.Image {
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	if srcW <= maxSide && srcH <= maxSide {
		return src
	}

	scale := float64(maxSide) / float64(srcW)
	if srcH > srcW {
		scale = float64(maxSide) / float64(srcH)
	}

	newW := int(float64(srcW) * scale)
	newH := int(float64(srcH) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			srcX := bounds.Min.X + int(float64(x)/scale)
			srcY := bounds.Min.Y + int(float64(y)/scale)
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
