// Package models resolves the on-disk location of the model artifacts
// described in the pipeline's external-interfaces contract: two detector
// engines (640/960), six aspect-ratio-bucketed recognizer engines, a
// classifier, an orientation engine, the UVDoc unwarper, and the character
// dictionary.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Detector target sizes.
const (
	DetectorSize640 = 640
	DetectorSize960 = 960
)

// Filenames for every model artifact this pipeline loads.
const (
	DetectionFilenameFmt   = "det_%d.onnx"  // formatted with DetectorSize640/960
	RecognitionFilenameFmt = "rec_b%d.onnx" // formatted with a bucket from imageops.Buckets()
	ClassifierFilename     = "textline_cls.onnx"
	OrientationFilename    = "doc_orientation.onnx"
	UVDocFilename          = "uvdoc.onnx"
	DictionaryFilename     = "ppocr_keys_v1.txt"
)

// Model type/category directories for the organized layout.
const (
	TypeDetection    = "detection"
	TypeRecognition  = "recognition"
	TypeLayout       = "layout"
	TypeDictionaries = "dictionaries"
)

// DefaultModelsDir is the directory name used when no explicit override is
// given.
const DefaultModelsDir = "models"

// EnvModelsDir is the environment variable that overrides the models
// directory.
const EnvModelsDir = "OAR_MODELS_DIR"

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not find project root (go.mod not found)")
		}
		dir = parent
	}
}

// GetModelsDir resolves the models directory. Priority: explicit param, env
// var, project-root-relative default, plain relative default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	if root, err := findProjectRoot(); err == nil {
		return filepath.Join(root, DefaultModelsDir)
	}
	return DefaultModelsDir
}

// ResolveModelPath resolves a filename within an organized type/ subdir,
// falling back to the legacy flat layout (baseDir/filename) for
// installations that predate the organized directory structure.
func ResolveModelPath(modelsDir, modelType, filename string) string {
	base := GetModelsDir(modelsDir)
	if modelType != "" {
		organized := filepath.Join(base, modelType, filename)
		if _, err := os.Stat(organized); err == nil {
			return organized
		}
	}
	return filepath.Join(base, filename)
}

// GetDetectorModelPath returns the path to the detector engine for the
// given target size (640 or 960).
func GetDetectorModelPath(modelsDir string, targetSize int) string {
	return ResolveModelPath(modelsDir, TypeDetection, fmt.Sprintf(DetectionFilenameFmt, targetSize))
}

// GetRecognizerModelPath returns the path to the recognizer engine for the
// given aspect-ratio bucket.
func GetRecognizerModelPath(modelsDir string, bucket int) string {
	return ResolveModelPath(modelsDir, TypeRecognition, fmt.Sprintf(RecognitionFilenameFmt, bucket))
}

// GetClassifierModelPath returns the path to the text-line orientation
// classifier.
func GetClassifierModelPath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeLayout, ClassifierFilename)
}

// GetOrientationModelPath returns the path to the 4-class document
// orientation model.
func GetOrientationModelPath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeLayout, OrientationFilename)
}

// GetUVDocModelPath returns the path to the UVDoc unwarping model.
func GetUVDocModelPath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeLayout, UVDocFilename)
}

// GetDictionaryPath returns the path to the character dictionary.
func GetDictionaryPath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeDictionaries, DictionaryFilename)
}

// ValidateModelExists returns an error if path does not exist.
func ValidateModelExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", path)
	}
	return nil
}

// DetectorSizeLabel renders a target size as it appears in filenames, kept
// separate from strconv.Itoa call sites so the format is consistent.
func DetectorSizeLabel(size int) string {
	return strconv.Itoa(size)
}
