package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyDocument(t *testing.T) {
	assert.Empty(t, Split("", nil))
	assert.Empty(t, Split("   \n  ", nil))
}

func TestSplitAttachesNearestHeading(t *testing.T) {
	doc := "# Levering\n\nBestellingen worden binnen 2 werkdagen geleverd.\n\n" +
		"# Retouren\n\nRetourneren kan binnen 30 dagen."

	chunks := Split(doc, nil)
	require.Len(t, chunks, 2)

	assert.Equal(t, "Levering", chunks[0].Heading)
	assert.Contains(t, chunks[0].Content, "werkdagen")
	assert.Equal(t, "Retouren", chunks[1].Heading)
	assert.Contains(t, chunks[1].Content, "30 dagen")
}

func TestSplitIndexesAreSequential(t *testing.T) {
	doc := "# A\n\neerste sectie\n\n# B\n\ntweede sectie\n\n# C\n\nderde sectie"
	chunks := Split(doc, nil)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, int32(i), chunk.Index)
	}
}

func TestSplitBoundsChunkSize(t *testing.T) {
	paragraph := strings.Repeat("woord ", 100) // ~600 chars
	doc := "# Sectie\n\n" + paragraph + "\n\n" + paragraph + "\n\n" + paragraph

	chunks := Split(doc, &Options{MaxChars: 700, OverlapChars: 50})
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 700+50)
		assert.Equal(t, "Sectie", chunk.Heading)
	}
}

func TestSplitCarriesOverlap(t *testing.T) {
	first := strings.Repeat("a", 400)
	second := strings.Repeat("b", 400)
	doc := first + "\n\n" + second

	chunks := Split(doc, &Options{MaxChars: 450, OverlapChars: 100})
	require.Len(t, chunks, 2)
	// The second chunk starts with the tail of the first.
	assert.True(t, strings.HasPrefix(chunks[1].Content, strings.Repeat("a", 100)))
}

func TestSplitPlainTextWithoutHeadings(t *testing.T) {
	doc := "Gewone tekst zonder koppen.\n\nTweede alinea."
	chunks := Split(doc, nil)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Equal(t, "", chunk.Heading)
	}
}

func TestSplitHardSplitsOversizedBlock(t *testing.T) {
	doc := strings.Repeat("x", 5000) // one block, no whitespace
	chunks := Split(doc, &Options{MaxChars: 1000, OverlapChars: 0})
	require.Greater(t, len(chunks), 4)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 1000)
	}
}
