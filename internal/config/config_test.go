package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.True(t, cfg.DocPreproc.EnableOrientation)
	assert.True(t, cfg.DocPreproc.EnableUnwarp)
	assert.Equal(t, 800, cfg.Detector.SizeThreshold)
	assert.Greater(t, cfg.Async.QueueDepth, 0)
}

func TestValidateRejectsBadBinThreshold(t *testing.T) {
	cfg := Config{Detector: DetectorConfig{BinThreshold: 1.5}, Async: AsyncConfig{QueueDepth: 1}}
	assert.Error(t, validate(cfg))
}

func TestValidateRejectsNonPositiveQueueDepth(t *testing.T) {
	cfg := Config{Detector: DetectorConfig{BinThreshold: 0.3}, Async: AsyncConfig{QueueDepth: 0}}
	assert.Error(t, validate(cfg))
}
