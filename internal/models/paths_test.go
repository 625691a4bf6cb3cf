package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelsDirExplicitWins(t *testing.T) {
	t.Setenv(EnvModelsDir, "/from/env")
	assert.Equal(t, "/explicit", GetModelsDir("/explicit"))
}

func TestGetModelsDirFallsBackToEnv(t *testing.T) {
	t.Setenv(EnvModelsDir, "/from/env")
	assert.Equal(t, "/from/env", GetModelsDir(""))
}

func TestResolveModelPathPrefersOrganizedLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, TypeDetection), 0o755))
	organized := filepath.Join(dir, TypeDetection, "det_640.onnx")
	require.NoError(t, os.WriteFile(organized, []byte("x"), 0o644))

	got := ResolveModelPath(dir, TypeDetection, "det_640.onnx")
	assert.Equal(t, organized, got)
}

func TestResolveModelPathFallsBackToFlatLayout(t *testing.T) {
	dir := t.TempDir()
	flat := filepath.Join(dir, "det_640.onnx")
	require.NoError(t, os.WriteFile(flat, []byte("x"), 0o644))

	got := ResolveModelPath(dir, TypeDetection, "det_640.onnx")
	assert.Equal(t, flat, got)
}

func TestGetDetectorModelPathFormatsFilename(t *testing.T) {
	dir := t.TempDir()
	got := GetDetectorModelPath(dir, DetectorSize640)
	assert.Equal(t, filepath.Join(dir, "det_640.onnx"), got)
}

func TestValidateModelExists(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.onnx")
	assert.Error(t, ValidateModelExists(missing))

	present := filepath.Join(dir, "present.onnx")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o644))
	assert.NoError(t, ValidateModelExists(present))
}
