// Package onnxrt adapts github.com/yalue/onnxruntime_go to the pipeline's
// NPU runtime contract: load(model) -> engine, run(engine, bytes) ->
// tensors, run_async(engine, bytes) -> job, wait(job) -> tensors. Every
// stage's model consumes uint8 HWC input and produces float32 output, so
// the tensor helpers here are HWC-native rather than the NCHW float32
// layout used elsewhere in the ecosystem.
package onnxrt

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yalue/onnxruntime_go"
)

var (
	envMu   sync.Mutex
	envInit bool
)

// EnsureEnvironment initializes the shared ONNX Runtime environment exactly
// once per process, locating the shared library first.
func EnsureEnvironment(useGPU bool) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envInit {
		return nil
	}
	if err := SetLibraryPath(useGPU); err != nil {
		return fmt.Errorf("set onnxruntime library path: %w", err)
	}
	if !onnxruntime_go.IsInitialized() {
		if err := onnxruntime_go.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime environment: %w", err)
		}
	}
	envInit = true
	return nil
}

// Engine wraps one loaded model and serializes calls against it, matching
// the spec's requirement that a single engine handle is never called
// concurrently.
type Engine struct {
	mu         sync.Mutex
	session    *onnxruntime_go.DynamicAdvancedSession
	inputInfo  onnxruntime_go.InputOutputInfo
	outputInfo onnxruntime_go.InputOutputInfo
}

// Load creates a session for the model at modelPath. numThreads <= 0 leaves
// the runtime default.
func Load(modelPath string, gpu GPUConfig, numThreads int) (*Engine, error) {
	if err := EnsureEnvironment(gpu.UseGPU); err != nil {
		return nil, err
	}

	inputs, outputs, err := onnxruntime_go.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", modelPath, err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("model %s: expected exactly 1 input and 1 output, got %d/%d",
			modelPath, len(inputs), len(outputs))
	}

	opts, err := onnxruntime_go.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer func() { _ = opts.Destroy() }()

	if err := ConfigureSessionForGPU(opts, gpu); err != nil {
		return nil, fmt.Errorf("configure gpu: %w", err)
	}
	if numThreads > 0 {
		if err := opts.SetIntraOpNumThreads(numThreads); err != nil {
			return nil, fmt.Errorf("set thread count: %w", err)
		}
	}

	session, err := onnxruntime_go.NewDynamicAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", modelPath, err)
	}

	return &Engine{session: session, inputInfo: inputs[0], outputInfo: outputs[0]}, nil
}

// Close destroys the underlying session.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}

// InputShape returns the declared input dimensions (may contain -1 for
// dynamic axes).
func (e *Engine) InputShape() []int64 {
	shape := make([]int64, len(e.inputInfo.Dimensions))
	copy(shape, e.inputInfo.Dimensions)
	return shape
}

// OutputShape returns the declared output dimensions.
func (e *Engine) OutputShape() []int64 {
	shape := make([]int64, len(e.outputInfo.Dimensions))
	copy(shape, e.outputInfo.Dimensions)
	return shape
}

// Output is one named output tensor.
type Output struct {
	Data  []float32
	Shape []int64
}

// RunHWC runs inference on a single uint8 HWC BGR image buffer of shape
// [1, H, W, C] and returns the single float32 output tensor.
func (e *Engine) RunHWC(data []byte, h, w, c int) (Output, error) {
	expected := h * w * c
	if len(data) != expected {
		return Output{}, fmt.Errorf("onnxrt: input data length %d != expected %d for %dx%dx%d", len(data), expected, h, w, c)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Output{}, errors.New("onnxrt: engine is closed")
	}

	shape := onnxruntime_go.NewShape(1, int64(h), int64(w), int64(c))
	input, err := onnxruntime_go.NewTensor(shape, data)
	if err != nil {
		return Output{}, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = input.Destroy() }()

	outputs := []onnxruntime_go.Value{nil}
	if err := e.session.Run([]onnxruntime_go.Value{input}, outputs); err != nil {
		return Output{}, fmt.Errorf("run inference: %w", err)
	}
	out := outputs[0]
	defer func() { _ = out.Destroy() }()

	floatOut, ok := out.(*onnxruntime_go.Tensor[float32])
	if !ok {
		return Output{}, fmt.Errorf("onnxrt: expected float32 output, got %T", out)
	}

	data32 := floatOut.GetData()
	shapeOut := floatOut.GetShape()
	result := Output{
		Data:  append([]float32(nil), data32...),
		Shape: append([]int64(nil), shapeOut...),
	}
	return result, nil
}

// asyncJob is the result of a RunAsync call, resolved by Wait.
type asyncJob struct {
	done chan struct{}
	out  Output
	err  error
}

// RunAsync dispatches RunHWC on a background goroutine and returns a job
// handle. onnxruntime_go has no native async job-id primitive, so this
// mirrors the spec's optional run_async/wait contract by running the
// blocking call off the caller's goroutine while still serializing actual
// engine access through Engine.mu.
func (e *Engine) RunAsync(data []byte, h, w, c int) *asyncJob {
	job := &asyncJob{done: make(chan struct{})}
	go func() {
		defer close(job.done)
		job.out, job.err = e.RunHWC(data, h, w, c)
	}()
	return job
}

// Wait blocks until the job dispatched by RunAsync completes.
func (e *Engine) Wait(job *asyncJob) (Output, error) {
	<-job.done
	return job.out, job.err
}
