package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphlane/oar/internal/onnxrt"
)

func TestExtractSequenceShapeOK(t *testing.T) {
	out := onnxrt.Output{
		Data:  make([]float32, 4*5),
		Shape: []int64{1, 4, 5},
	}
	timesteps, classes, err := extractSequenceShape(out)
	require.NoError(t, err)
	assert.Equal(t, 4, timesteps)
	assert.Equal(t, 5, classes)
}

func TestExtractSequenceShapeRejectsWrongRank(t *testing.T) {
	out := onnxrt.Output{Data: []float32{1, 2}, Shape: []int64{1, 2}}
	_, _, err := extractSequenceShape(out)
	assert.Error(t, err)
}

func TestExtractSequenceShapeRejectsSizeMismatch(t *testing.T) {
	out := onnxrt.Output{Data: []float32{1, 2, 3}, Shape: []int64{1, 4, 5}}
	_, _, err := extractSequenceShape(out)
	assert.Error(t, err)
}

func TestExtractSequenceShapeRejectsNonPositiveDims(t *testing.T) {
	out := onnxrt.Output{Data: []float32{}, Shape: []int64{1, 0, 5}}
	_, _, err := extractSequenceShape(out)
	assert.Error(t, err)
}
