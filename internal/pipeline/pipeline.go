// Package pipeline wires the preprocessing, detection, classification and
// recognition stages into the synchronous per-image pipeline: doc preproc,
// detect, crop each region, correct its orientation, recognize its text,
// and assemble the ordered result.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glyphlane/oar/internal/classifier"
	"github.com/glyphlane/oar/internal/detector"
	"github.com/glyphlane/oar/internal/docpreproc"
	"github.com/glyphlane/oar/internal/geom"
	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/models"
	"github.com/glyphlane/oar/internal/onnxrt"
	"github.com/glyphlane/oar/internal/recognizer"
)

// ErrNotInitialized is returned by Process when called before a successful
// Initialize.
var ErrNotInitialized = errors.New("pipeline: process called before initialize")

// ErrStopped is returned by Process when called after Stop.
var ErrStopped = errors.New("pipeline: process called after stop")

// Line is one recognized text region, in the coordinates of the
// preprocessed page (after orientation correction and unwarping).
type Line struct {
	// Index is this line's position in the post-sort, final ordering.
	Index            int
	Quad             geom.Quad
	Text             string
	DetectionScore   float32
	RecognitionScore float32
	LineRotated      bool
}

// Stats reports how long each stage took for one page, and how many
// candidate boxes survived each stage, for logging and benchmarking.
type Stats struct {
	PreprocessTime time.Duration
	DetectTime     time.Duration
	RecognizeTime  time.Duration
	TotalTime      time.Duration
	LineCount      int

	// DetectedBoxes is the number of regions the detector found.
	DetectedBoxes int
	// ClassifiedRotated is how many of those regions the classifier
	// flagged as upside down.
	ClassifiedRotated int
	// RecognizedBoxes is how many regions survived recognition (nonempty
	// text at or above the confidence threshold).
	RecognizedBoxes int
	// RecognitionRate is RecognizedBoxes / DetectedBoxes, 0 when nothing
	// was detected.
	RecognitionRate float64
}

// Result is the full output of processing one page.
type Result struct {
	Lines    []Line
	Angle    int
	Unwarped bool
	Stats    Stats
}

// TaskConfig overrides a subset of per-stage configuration for a single
// Process (or asyncpipeline task), without touching the engine handles or
// the pipeline's own defaults. A nil field means "use the pipeline's
// configured default for that stage".
type TaskConfig struct {
	DocPreproc *docpreproc.Config
	Detector   *detector.Config
	Classifier *classifier.Config
	Recognizer *recognizer.Config
}

// InitConfig names every model artifact and per-stage default Initialize
// needs to build a ready Pipeline.
type InitConfig struct {
	ModelsDir  string
	GPU        onnxrt.GPUConfig
	NumThreads int

	DocPreproc docpreproc.Config
	Detector   detector.Config
	Recognizer recognizer.Config

	ClassifierEnabled             bool
	ClassifierConfidenceThreshold float32
}

// Pipeline bundles one fully configured instance of each stage. A zero
// Pipeline is not usable; call Initialize first.
type Pipeline struct {
	Preproc    *docpreproc.Preprocessor
	Detector   *detector.Detector
	Classifier *classifier.Classifier
	Recognizer *recognizer.Recognizer

	mu                sync.Mutex
	initialized       bool
	stopped           bool
	classifierEnabled bool
	engines           []*onnxrt.Engine
}

// New returns an uninitialized Pipeline. Call Initialize before Process.
func New() *Pipeline {
	return &Pipeline{}
}

// Initialize loads every model artifact named by icfg and wires up the
// stage objects. It is idempotent: calling it again after a successful
// initialization is a no-op that returns true, nil. If any model fails to
// load, every engine opened so far is closed before the error is returned,
// so a failed Initialize leaves nothing open.
func (p *Pipeline) Initialize(icfg InitConfig) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return true, nil
	}

	dir := models.GetModelsDir(icfg.ModelsDir)

	var engines []*onnxrt.Engine
	closeAll := func() {
		for _, e := range engines {
			_ = e.Close()
		}
	}
	load := func(path string) (*onnxrt.Engine, error) {
		if err := models.ValidateModelExists(path); err != nil {
			return nil, err
		}
		e, err := onnxrt.Load(path, icfg.GPU, icfg.NumThreads)
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
		return e, nil
	}

	orientationEngine, err := load(models.GetOrientationModelPath(dir))
	if err != nil {
		closeAll()
		return false, fmt.Errorf("pipeline: load orientation model: %w", err)
	}
	uvdocEngine, err := load(models.GetUVDocModelPath(dir))
	if err != nil {
		closeAll()
		return false, fmt.Errorf("pipeline: load uvdoc model: %w", err)
	}
	detSmall, err := load(models.GetDetectorModelPath(dir, models.DetectorSize640))
	if err != nil {
		closeAll()
		return false, fmt.Errorf("pipeline: load detector 640 model: %w", err)
	}
	detLarge, err := load(models.GetDetectorModelPath(dir, models.DetectorSize960))
	if err != nil {
		closeAll()
		return false, fmt.Errorf("pipeline: load detector 960 model: %w", err)
	}

	var cls *classifier.Classifier
	if icfg.ClassifierEnabled {
		clsEngine, err := load(models.GetClassifierModelPath(dir))
		if err != nil {
			closeAll()
			return false, fmt.Errorf("pipeline: load classifier model: %w", err)
		}
		cls = classifier.New(clsEngine, icfg.ClassifierConfidenceThreshold)
	}

	recEngines := make(map[int]*onnxrt.Engine, len(imageops.Buckets()))
	for _, bucket := range imageops.Buckets() {
		e, err := load(models.GetRecognizerModelPath(dir, bucket))
		if err != nil {
			closeAll()
			return false, fmt.Errorf("pipeline: load recognizer bucket %d model: %w", bucket, err)
		}
		recEngines[bucket] = e
	}

	dict, err := recognizer.LoadDictionary(models.GetDictionaryPath(dir))
	if err != nil {
		closeAll()
		return false, fmt.Errorf("pipeline: load dictionary: %w", err)
	}

	rec, err := recognizer.New(recEngines, dict, icfg.Recognizer)
	if err != nil {
		closeAll()
		return false, fmt.Errorf("pipeline: build recognizer: %w", err)
	}

	p.Preproc = docpreproc.New(icfg.DocPreproc,
		docpreproc.NewOrientationClassifier(orientationEngine),
		docpreproc.NewUnwarper(uvdocEngine))
	p.Detector = detector.New(detSmall, detLarge, icfg.Detector)
	p.Classifier = cls
	p.classifierEnabled = icfg.ClassifierEnabled
	p.Recognizer = rec
	p.engines = engines
	p.initialized = true
	return true, nil
}

// Stop closes every engine opened by Initialize. It is idempotent; a
// Pipeline that was never initialized has nothing to close.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil
	}
	p.stopped = true
	var firstErr error
	for _, e := range p.engines {
		if err := e.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Process runs every stage on img in order and returns the assembled
// result. taskCfg overrides the corresponding stage's default
// configuration for this call only; a zero TaskConfig uses every stage's
// own defaults. Calling Process before a successful Initialize, or after
// Stop, is a usage error.
func (p *Pipeline) Process(img *imageops.Image, taskCfg TaskConfig) (Result, error) {
	p.mu.Lock()
	initialized, stopped := p.initialized, p.stopped
	p.mu.Unlock()
	if stopped {
		return Result{}, ErrStopped
	}
	if !initialized {
		return Result{}, ErrNotInitialized
	}

	start := time.Now()
	result := Result{}

	preStart := time.Now()
	var preResult docpreproc.Result
	var err error
	if taskCfg.DocPreproc != nil {
		preResult, err = p.Preproc.RunWithConfig(img, *taskCfg.DocPreproc)
	} else {
		preResult, err = p.Preproc.Run(img)
	}
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: preprocess: %w", err)
	}
	result.Angle = preResult.Angle
	result.Unwarped = preResult.Unwarped
	result.Stats.PreprocessTime = time.Since(preStart)

	detStart := time.Now()
	var boxes []detector.Box
	if taskCfg.Detector != nil {
		boxes, err = p.Detector.DetectWithConfig(preResult.Image, *taskCfg.Detector)
	} else {
		boxes, err = p.Detector.Detect(preResult.Image)
	}
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: detect: %w", err)
	}
	result.Stats.DetectTime = time.Since(detStart)
	result.Stats.DetectedBoxes = len(boxes)

	recStart := time.Now()
	lines := make([]Line, 0, len(boxes))
	classifiedRotated := 0
	for _, box := range boxes {
		outcome, err := p.processLine(preResult.Image, box, taskCfg)
		if err != nil {
			return Result{}, fmt.Errorf("pipeline: process line: %w", err)
		}
		if outcome.rotated {
			classifiedRotated++
		}
		if outcome.kept {
			lines = append(lines, outcome.line)
		}
	}
	for i := range lines {
		lines[i].Index = i
	}
	result.Stats.RecognizeTime = time.Since(recStart)
	result.Stats.LineCount = len(lines)
	result.Stats.ClassifiedRotated = classifiedRotated
	result.Stats.RecognizedBoxes = len(lines)
	if result.Stats.DetectedBoxes > 0 {
		result.Stats.RecognitionRate = float64(len(lines)) / float64(result.Stats.DetectedBoxes)
	}
	result.Stats.TotalTime = time.Since(start)
	result.Lines = lines

	return result, nil
}

type lineOutcome struct {
	line    Line
	kept    bool
	rotated bool
}

// processLine crops, classifies and recognizes one detected region. kept
// is false for crops the recognizer could not decode anything useful from
// (empty text, or below the confidence threshold), which are dropped from
// the assembled result rather than surfaced as zero-length lines.
func (p *Pipeline) processLine(img *imageops.Image, box detector.Box, taskCfg TaskConfig) (lineOutcome, error) {
	crop, err := imageops.RotateCrop(img, box.Quad)
	if err != nil {
		return lineOutcome{}, fmt.Errorf("crop: %w", err)
	}

	rotated := false
	classifierEnabled := p.classifierEnabled
	confidenceThreshold := float32(0)
	if p.Classifier != nil {
		confidenceThreshold = p.Classifier.ConfidenceThreshold()
	}
	if taskCfg.Classifier != nil {
		classifierEnabled = taskCfg.Classifier.Enabled
		confidenceThreshold = taskCfg.Classifier.ConfidenceThreshold
	}

	if classifierEnabled && p.Classifier != nil {
		cls, err := p.Classifier.ClassifyWithConfig(crop, confidenceThreshold)
		if err != nil {
			return lineOutcome{}, fmt.Errorf("classify: %w", err)
		}
		crop, err = classifier.Apply(crop, cls)
		if err != nil {
			return lineOutcome{}, fmt.Errorf("apply classification: %w", err)
		}
		rotated = cls.Rotated
	}

	var decoded recognizer.DecodedText
	if taskCfg.Recognizer != nil {
		decoded, err = p.Recognizer.RecognizeWithConfig(crop, *taskCfg.Recognizer)
	} else {
		decoded, err = p.Recognizer.Recognize(crop)
	}
	if err != nil {
		return lineOutcome{}, fmt.Errorf("recognize: %w", err)
	}
	if decoded.Text == "" {
		return lineOutcome{kept: false, rotated: rotated}, nil
	}

	return lineOutcome{
		line: Line{
			Quad:             box.Quad,
			Text:             decoded.Text,
			DetectionScore:   box.Score,
			RecognitionScore: decoded.Confidence,
			LineRotated:      rotated,
		},
		kept:    true,
		rotated: rotated,
	}, nil
}
