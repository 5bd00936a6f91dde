package extract

import (
	"errors"
	"testing"

	"ai-studyroom-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	r := NewRegistry()

	text, err := r.Extract([]byte("the sky is blue"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "the sky is blue", text)

	text, err = r.Extract([]byte("# heading"), "README.md")
	require.NoError(t, err)
	assert.Equal(t, "# heading", text)

	text, err = r.Extract([]byte("term,definition\nsky,blue"), "deck.csv")
	require.NoError(t, err)
	assert.Equal(t, "term,definition\nsky,blue", text)
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract([]byte{0xff, 0xfe, 0x00, 0x41}, "binary.txt")
	assert.True(t, errors.Is(err, apperr.ErrExtractionFailed))
}

func TestExtractUnsupportedFormat(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract([]byte{0x25, 0x50, 0x44, 0x46}, "paper.pdf")
	assert.True(t, errors.Is(err, apperr.ErrUnsupportedFormat))
}

func TestExtractRegisteredFormat(t *testing.T) {
	r := NewRegistry()
	r.Register(".pdf", func(raw []byte) (string, error) {
		return "extracted pdf text", nil
	})

	text, err := r.Extract([]byte{0x25, 0x50, 0x44, 0x46}, "Paper.PDF")
	require.NoError(t, err)
	assert.Equal(t, "extracted pdf text", text)
}

func TestExtractFailurePropagates(t *testing.T) {
	r := NewRegistry()
	r.Register(".docx", func(raw []byte) (string, error) {
		return "", errors.New("corrupt archive")
	})

	_, err := r.Extract([]byte("x"), "report.docx")
	assert.True(t, errors.Is(err, apperr.ErrExtractionFailed))
}

func TestExtractEmptyDocument(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract([]byte("   \n\t "), "blank.txt")
	assert.True(t, errors.Is(err, apperr.ErrExtractionFailed))
}
