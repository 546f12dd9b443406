package generateimage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectVariation_Deterministic(t *testing.T) {
	tokens := []string{"", "abc123", "run-42", "한국어", "🎨", "a very long diversity token with spaces"}

	for _, token := range tokens {
		first := SelectVariation(token)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, SelectVariation(token), "token %q must map to a stable phrase", token)
		}
	}
}

func TestSelectVariation_ReturnsCatalogEntry(t *testing.T) {
	catalog := map[string]bool{}
	for _, v := range variations {
		catalog[v] = true
	}

	for _, token := range []string{"", "a", "b", "abc123", "xyz", "diversity-token-1"} {
		phrase := SelectVariation(token)
		assert.True(t, catalog[phrase], "phrase %q for token %q must come from the catalog", phrase, token)
	}
}

func TestSelectVariation_SpreadsAcrossCatalog(t *testing.T) {
	// not a uniqueness guarantee, but a healthy hash should hit more than
	// one bucket over many distinct tokens
	seen := map[string]bool{}
	for _, token := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n"} {
		seen[SelectVariation(token)] = true
	}
	assert.Greater(t, len(seen), 1, "distinct tokens should not all collapse onto one phrase")
}

func TestComposePrompt_NonEmptyTokenIsFullyDeterministic(t *testing.T) {
	phrase := SelectVariation("abc123")

	first := ComposePrompt("A shepherd in a field", phrase, "abc123")
	second := ComposePrompt("A shepherd in a field", phrase, "abc123")

	assert.Equal(t, first, second)
	assert.Contains(t, first, "A shepherd in a field")
	assert.Contains(t, first, phrase)
	assert.Contains(t, first, "(variation-id: abc123)")
}

func TestComposePrompt_EmptyTokenDiffersOnlyInMarker(t *testing.T) {
	phrase := SelectVariation("")

	first := ComposePrompt("A shepherd in a field", phrase, "")
	second := ComposePrompt("A shepherd in a field", phrase, "")

	markerIdx := strings.Index(first, "(variation-id:")
	require.Greater(t, markerIdx, 0)
	require.Greater(t, strings.Index(second, "(variation-id:"), 0)

	assert.Equal(t, first[:markerIdx], second[:strings.Index(second, "(variation-id:")],
		"everything before the uniqueness marker must be identical")
}

func TestComposePrompt_KeepsVariationInstruction(t *testing.T) {
	out := ComposePrompt("base", "soft vignette", "tok")
	assert.Contains(t, out, "Visual variation: soft vignette.")
	assert.Contains(t, out, "noticeably different composition")
	assert.Contains(t, out, "Do not repeat the exact subject pose or camera placement.")
}

func TestVariationCatalogSize(t *testing.T) {
	assert.Equal(t, 12, VariationCatalogSize())
}
