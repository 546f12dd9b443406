package generateimage

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"
)

// variations - fixed catalog of photographic variation phrases. Selection is
// deterministic per diversity token, so repeated requests with the same token
// land on the same phrase while different tokens spread across the catalog.
var variations = []string{
	"low-angle perspective",
	"bird’s-eye view",
	"eye-level composition",
	"golden hour lighting",
	"soft overcast lighting",
	"dramatic rim light",
	"wide-angle depth",
	"telephoto compression",
	"35mm lens feel",
	"isometric framing",
	"subtle film grain",
	"soft vignette",
}

// hashToken - FNV-style rolling hash over UTF-16 code units. The fold keeps
// parity with clients that hash via charCodeAt, so token→phrase mapping is
// stable across the stack.
func hashToken(token string) uint32 {
	var h uint32 = 2166136261
	for _, c := range utf16.Encode([]rune(token)) {
		h ^= uint32(c)
		h += (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
	}
	return h
}

// SelectVariation - deterministic diversity token → variation phrase.
// Always returns a catalog entry; the empty token is a valid input.
func SelectVariation(diversityToken string) string {
	idx := hashToken(diversityToken) % uint32(len(variations))
	return variations[idx]
}

// ComposePrompt - base prompt + variation instruction + uniqueness marker.
// The trailing variation-id makes even identical base prompts textually
// distinct, which matters for providers that cache by literal prompt text.
// An empty uniqueness token falls back to the current unix-ms time.
func ComposePrompt(basePrompt, variationPhrase, uniquenessToken string) string {
	marker := uniquenessToken
	if marker == "" {
		marker = fmt.Sprintf("%d", time.Now().UnixMilli())
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")
	b.WriteString("Visual variation: " + variationPhrase + ". ")
	b.WriteString("Use a noticeably different composition from any prior attempts. ")
	b.WriteString("Do not repeat the exact subject pose or camera placement. ")
	b.WriteString("(variation-id: " + marker + ")")
	return b.String()
}

// VariationCatalogSize - number of phrases in the catalog
func VariationCatalogSize() int {
	return len(variations)
}
