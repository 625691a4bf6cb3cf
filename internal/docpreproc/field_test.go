package docpreproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphlane/oar/internal/onnxrt"
)

func TestParseFieldChannelsFirst(t *testing.T) {
	h, w := 2, 3
	data := make([]float32, 2*h*w)
	for i := range data[:h*w] {
		data[i] = float32(i) // u plane
	}
	for i := range data[h*w:] {
		data[h*w+i] = float32(i) * 2 // v plane
	}
	out := onnxrt.Output{Data: data, Shape: []int64{1, 2, int64(h), int64(w)}}

	f, err := parseField(out)
	require.NoError(t, err)
	assert.Equal(t, h, f.h)
	assert.Equal(t, w, f.w)
	assert.Equal(t, float32(0), f.u[0])
	assert.Equal(t, float32(0), f.v[0])
	assert.Equal(t, float32(5), f.u[5])
	assert.Equal(t, float32(10), f.v[5])
}

func TestParseFieldChannelsLast(t *testing.T) {
	h, w := 2, 2
	data := []float32{0, 100, 1, 101, 2, 102, 3, 103}
	out := onnxrt.Output{Data: data, Shape: []int64{1, int64(h), int64(w), 2}}

	f, err := parseField(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2, 3}, f.u)
	assert.Equal(t, []float32{100, 101, 102, 103}, f.v)
}

func TestParseFieldRejectsWrongRank(t *testing.T) {
	out := onnxrt.Output{Data: []float32{1, 2}, Shape: []int64{1, 2}}
	_, err := parseField(out)
	assert.Error(t, err)
}

func TestParseFieldRejectsNoTwoChannelAxis(t *testing.T) {
	out := onnxrt.Output{Data: make([]float32, 60), Shape: []int64{1, 3, 4, 5}}
	_, err := parseField(out)
	assert.Error(t, err)
}
