package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDict() *Dictionary {
	return &Dictionary{chars: []string{"", "a", "b", "c"}}
}

func TestGreedyDecodeCollapsesRepeats(t *testing.T) {
	// timesteps: a a blank b b b c -> "abc"
	classes := 4
	rows := [][]float32{
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 1, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	probs := make([]float32, 0, len(rows)*classes)
	for _, r := range rows {
		probs = append(probs, r...)
	}

	decoded := GreedyDecode(probs, len(rows), classes, testDict())
	assert.Equal(t, "abc", decoded.Text)
}

func TestGreedyDecodeEmptyOnAllBlank(t *testing.T) {
	classes := 4
	probs := []float32{1, 0, 0, 0, 1, 0, 0, 0}
	decoded := GreedyDecode(probs, 2, classes, testDict())
	assert.Equal(t, "", decoded.Text)
}

func TestDictionaryBlankAtZero(t *testing.T) {
	d := testDict()
	assert.Equal(t, "", d.At(0))
	assert.Equal(t, "a", d.At(1))
	assert.Equal(t, 4, d.Len())
}

func TestCheckModelChannelsMismatch(t *testing.T) {
	d := testDict()
	assert.Error(t, d.CheckModelChannels(5))
	assert.NoError(t, d.CheckModelChannels(4))
}
