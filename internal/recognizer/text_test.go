package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTextEmptyIsNoop(t *testing.T) {
	assert.Equal(t, "", normalizeText(""))
}

func TestNormalizeTextStripsControlChars(t *testing.T) {
	got := normalizeText("ab\x00c\x01")
	assert.Equal(t, "abc", got)
}

func TestNormalizeTextComposesCombiningMarks(t *testing.T) {
	decomposed := "é" // "e" followed by a combining acute accent
	got := normalizeText(decomposed)
	assert.Equal(t, "é", got) // precomposed e-acute
}
