package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagePreviewKeepsShortContent(t *testing.T) {
	assert.Equal(t, "see you at the library", messagePreview("see you at the library"))
	assert.Equal(t, "", messagePreview(""))
}

func TestMessagePreviewTruncatesOnRuneBoundary(t *testing.T) {
	content := strings.Repeat("é", 150)

	preview := messagePreview(content)

	require.True(t, utf8.ValidString(preview), "truncation must not split a multi-byte character")
	assert.Equal(t, strings.Repeat("é", 100)+"...", preview)
	assert.Len(t, []rune(preview), 103)
}
