package textsplit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkWords int
		overlap    int
		wantChunks int
	}{
		{name: "empty", text: "", chunkWords: 500, overlap: 0, wantChunks: 0},
		{name: "whitespace only", text: "  \n\t ", chunkWords: 500, overlap: 0, wantChunks: 0},
		{name: "fits one chunk", text: words(100), chunkWords: 500, overlap: 0, wantChunks: 1},
		{name: "exact boundary", text: words(500), chunkWords: 500, overlap: 0, wantChunks: 1},
		{name: "three chunks no overlap", text: words(1500), chunkWords: 500, overlap: 0, wantChunks: 3},
		{name: "uneven tail", text: words(1001), chunkWords: 500, overlap: 0, wantChunks: 3},
		{name: "with overlap", text: words(1000), chunkWords: 500, overlap: 100, wantChunks: 3},
		{name: "overlap larger than chunk falls back", text: words(1000), chunkWords: 500, overlap: 600, wantChunks: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitWords(tt.text, tt.chunkWords, tt.overlap)
			assert.Len(t, chunks, tt.wantChunks)

			for _, c := range chunks {
				assert.LessOrEqual(t, len(strings.Fields(c)), tt.chunkWords)
			}
		})
	}
}

func TestSplitWordsPreservesContent(t *testing.T) {
	text := words(1200)
	chunks := SplitWords(text, 500, 0)

	// No overlap: rejoining the chunks reproduces the input word sequence.
	assert.Equal(t, text, strings.Join(chunks, " "))
}

func TestSplitWordsOverlapRepeatsBoundary(t *testing.T) {
	chunks := SplitWords(words(1000), 500, 100)

	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	assert.Equal(t, first[len(first)-100:], second[:100])
}
