package onnxrt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/yalue/onnxruntime_go"
)

const (
	osLinux    = "linux"
	osDarwin   = "darwin"
	osWindows  = "windows"
	libLinux   = "libonnxruntime.so"
	libDarwin  = "libonnxruntime.dylib"
	libWindows = "onnxruntime.dll"
)

// GPUConfig holds configuration for CUDA acceleration.
type GPUConfig struct {
	UseGPU                bool
	DeviceID              int
	GPUMemLimit           uint64
	ArenaExtendStrategy   string
	CUDNNConvAlgoSearch   string
	DoCopyInDefaultStream bool
}

// DefaultGPUConfig returns the default (disabled) GPU configuration.
func DefaultGPUConfig() GPUConfig {
	return GPUConfig{
		ArenaExtendStrategy:   "kNextPowerOfTwo",
		CUDNNConvAlgoSearch:   "DEFAULT",
		DoCopyInDefaultStream: true,
	}
}

// ConfigureSessionForGPU appends a CUDA execution provider to sessionOptions
// when cfg.UseGPU is set; a no-op otherwise.
func ConfigureSessionForGPU(sessionOptions *onnxruntime_go.SessionOptions, cfg GPUConfig) error {
	if !cfg.UseGPU {
		return nil
	}

	cudaOpts, err := onnxruntime_go.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("create CUDA provider options (GPU may be unavailable): %w", err)
	}
	defer func() { _ = cudaOpts.Destroy() }()

	settings := map[string]string{
		"device_id": strconv.Itoa(cfg.DeviceID),
	}
	if cfg.GPUMemLimit > 0 {
		settings["gpu_mem_limit"] = strconv.FormatUint(cfg.GPUMemLimit, 10)
	}
	if cfg.ArenaExtendStrategy != "" {
		settings["arena_extend_strategy"] = cfg.ArenaExtendStrategy
	}
	if cfg.CUDNNConvAlgoSearch != "" {
		settings["cudnn_conv_algo_search"] = cfg.CUDNNConvAlgoSearch
	}
	if cfg.DoCopyInDefaultStream {
		settings["do_copy_in_default_stream"] = "1"
	} else {
		settings["do_copy_in_default_stream"] = "0"
	}

	if err := cudaOpts.Update(settings); err != nil {
		return fmt.Errorf("update CUDA provider options: %w", err)
	}
	if err := sessionOptions.AppendExecutionProviderCUDA(cudaOpts); err != nil {
		return fmt.Errorf("append CUDA execution provider: %w", err)
	}
	return nil
}

// ValidateGPUConfig checks enum fields of cfg for well-formedness.
func ValidateGPUConfig(cfg GPUConfig) error {
	if !cfg.UseGPU {
		return nil
	}
	if cfg.DeviceID < 0 {
		return fmt.Errorf("device id must be non-negative, got %d", cfg.DeviceID)
	}
	switch cfg.ArenaExtendStrategy {
	case "", "kNextPowerOfTwo", "kSameAsRequested":
	default:
		return fmt.Errorf("invalid arena extend strategy: %s", cfg.ArenaExtendStrategy)
	}
	switch cfg.CUDNNConvAlgoSearch {
	case "", "EXHAUSTIVE", "HEURISTIC", "DEFAULT":
	default:
		return fmt.Errorf("invalid cudnn conv algo search: %s", cfg.CUDNNConvAlgoSearch)
	}
	return nil
}

func getSystemLibraryPaths(useGPU bool) []string {
	if useGPU {
		return []string{
			"/opt/onnxruntime/gpu/lib/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
			"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
		}
	}
	return []string{
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/libonnxruntime.so",
		"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
	}
}

func findProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current directory: %w", err)
	}
	root := cwd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root, nil
		}
		parent := filepath.Dir(root)
		if parent == root {
			return "", errors.New("could not find project root")
		}
		root = parent
	}
}

func getLibraryName() (string, error) {
	switch runtime.GOOS {
	case osLinux:
		return libLinux, nil
	case osDarwin:
		return libDarwin, nil
	case osWindows:
		return libWindows, nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

func trySetLibraryPath(path string) bool {
	if _, err := os.Stat(path); err == nil {
		onnxruntime_go.SetSharedLibraryPath(path)
		return true
	}
	return false
}

// SetLibraryPath locates the ONNX Runtime shared library, preferring system
// install paths and falling back to a project-relative onnxruntime/ dir.
func SetLibraryPath(useGPU bool) error {
	for _, path := range getSystemLibraryPaths(useGPU) {
		if trySetLibraryPath(path) {
			return nil
		}
	}

	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	libName, err := getLibraryName()
	if err != nil {
		return err
	}

	if useGPU {
		gpuPath := filepath.Join(root, "onnxruntime", "gpu", "lib", libName)
		if trySetLibraryPath(gpuPath) {
			return nil
		}
	}
	cpuPath := filepath.Join(root, "onnxruntime", "lib", libName)
	if !trySetLibraryPath(cpuPath) {
		return fmt.Errorf("ONNX Runtime library not found at %s", cpuPath)
	}
	return nil
}
