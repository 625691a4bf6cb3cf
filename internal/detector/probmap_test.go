package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphlane/oar/internal/onnxrt"
)

func TestExtractProbabilityMapChannelsFirst(t *testing.T) {
	out := onnxrt.Output{
		Data:  make([]float32, 2*3),
		Shape: []int64{1, 1, 2, 3},
	}
	data, h, w, err := extractProbabilityMap(out)
	require.NoError(t, err)
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)
	assert.Len(t, data, 6)
}

func TestExtractProbabilityMapChannelsLast(t *testing.T) {
	out := onnxrt.Output{
		Data:  make([]float32, 2*3),
		Shape: []int64{1, 2, 3, 1},
	}
	_, h, w, err := extractProbabilityMap(out)
	require.NoError(t, err)
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)
}

func TestExtractProbabilityMapRejectsWrongRank(t *testing.T) {
	out := onnxrt.Output{Data: []float32{1, 2, 3}, Shape: []int64{1, 3}}
	_, _, _, err := extractProbabilityMap(out)
	assert.Error(t, err)
}

func TestExtractProbabilityMapRejectsSizeMismatch(t *testing.T) {
	out := onnxrt.Output{Data: []float32{1, 2, 3}, Shape: []int64{1, 1, 2, 3}}
	_, _, _, err := extractProbabilityMap(out)
	assert.Error(t, err)
}

func TestExtractProbabilityMapRejectsNoSingletonAxis(t *testing.T) {
	out := onnxrt.Output{Data: make([]float32, 24), Shape: []int64{1, 2, 3, 4}}
	_, _, _, err := extractProbabilityMap(out)
	assert.Error(t, err)
}
