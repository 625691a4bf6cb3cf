// Package config loads layered pipeline configuration (defaults, optional
// config file, OAR_-prefixed environment) via spf13/viper into typed structs
// for each pipeline stage.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/glyphlane/oar/internal/asyncpipeline"
	"github.com/glyphlane/oar/internal/detector"
	"github.com/glyphlane/oar/internal/docpreproc"
	"github.com/glyphlane/oar/internal/onnxrt"
	"github.com/glyphlane/oar/internal/pipeline"
	"github.com/glyphlane/oar/internal/recognizer"
)

// DocPreprocConfig configures the orientation+unwarp stage.
type DocPreprocConfig struct {
	EnableOrientation   bool
	EnableUnwarp        bool
	ConfidenceThreshold float32
}

// DetectorConfig configures DBNet routing and postprocessing.
type DetectorConfig struct {
	SizeThreshold int
	BinThreshold  float32
	BoxThreshold  float32
	UnclipRatio   float64
	MinBoxArea    int
	MaxCandidates int
}

// ClassifierConfig configures the binary line-orientation stage.
type ClassifierConfig struct {
	Enabled             bool
	ConfidenceThreshold float32
}

// RecognizerConfig configures bucketed recognition.
type RecognizerConfig struct {
	TargetHeight  int
	MaxBucket     int
	ConfThreshold float32
}

// AsyncConfig configures the task/result worker.
type AsyncConfig struct {
	QueueDepth int
	ResultTTL  time.Duration
}

// RuntimeConfig configures ONNX Runtime session creation.
type RuntimeConfig struct {
	UseGPU     bool
	DeviceID   int
	NumThreads int
}

// Config is the full layered configuration for one pipeline instance.
type Config struct {
	ModelsDir  string
	LogLevel   string
	DocPreproc DocPreprocConfig
	Detector   DetectorConfig
	Classifier ClassifierConfig
	Recognizer RecognizerConfig
	Async      AsyncConfig
	Runtime    RuntimeConfig
}

// Loader reads layered configuration via viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader builds a Loader with defaults applied and environment variable
// overrides enabled under the OAR_ prefix.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("OAR")
	v.AutomaticEnv()
	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("models_dir", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("doc_preproc.enable_orientation", true)
	v.SetDefault("doc_preproc.enable_unwarp", true)
	v.SetDefault("doc_preproc.confidence_threshold", docpreproc.DefaultConfig().ConfidenceThreshold)

	v.SetDefault("detector.size_threshold", detector.DefaultConfig().SizeThreshold)
	v.SetDefault("detector.bin_threshold", detector.DefaultConfig().BinThreshold)
	v.SetDefault("detector.box_threshold", detector.DefaultConfig().BoxThreshold)
	v.SetDefault("detector.unclip_ratio", detector.DefaultConfig().UnclipRatio)
	v.SetDefault("detector.min_box_area", detector.DefaultConfig().MinBoxArea)
	v.SetDefault("detector.max_candidates", detector.DefaultConfig().MaxCandidates)

	v.SetDefault("classifier.enabled", true)
	v.SetDefault("classifier.confidence_threshold", 0.9)

	v.SetDefault("recognizer.target_height", recognizer.DefaultConfig().TargetHeight)
	v.SetDefault("recognizer.max_bucket", recognizer.DefaultConfig().MaxBucket)
	v.SetDefault("recognizer.conf_threshold", recognizer.DefaultConfig().ConfThreshold)

	v.SetDefault("async.queue_depth", asyncpipeline.DefaultConfig().QueueDepth)
	v.SetDefault("async.result_ttl", asyncpipeline.DefaultConfig().ResultTTL)

	v.SetDefault("runtime.use_gpu", false)
	v.SetDefault("runtime.device_id", 0)
	v.SetDefault("runtime.num_threads", 0)
}

// LoadWithFile reads defaults, then the given config file, then
// environment overrides.
func (l *Loader) LoadWithFile(path string) (Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return l.build()
}

// Load reads defaults and environment overrides without a config file.
func (l *Loader) Load() (Config, error) {
	return l.build()
}

func (l *Loader) build() (Config, error) {
	cfg := Config{
		ModelsDir: l.v.GetString("models_dir"),
		LogLevel:  l.v.GetString("log_level"),
		DocPreproc: DocPreprocConfig{
			EnableOrientation:   l.v.GetBool("doc_preproc.enable_orientation"),
			EnableUnwarp:        l.v.GetBool("doc_preproc.enable_unwarp"),
			ConfidenceThreshold: float32(l.v.GetFloat64("doc_preproc.confidence_threshold")),
		},
		Detector: DetectorConfig{
			SizeThreshold: l.v.GetInt("detector.size_threshold"),
			BinThreshold:  float32(l.v.GetFloat64("detector.bin_threshold")),
			BoxThreshold:  float32(l.v.GetFloat64("detector.box_threshold")),
			UnclipRatio:   l.v.GetFloat64("detector.unclip_ratio"),
			MinBoxArea:    l.v.GetInt("detector.min_box_area"),
			MaxCandidates: l.v.GetInt("detector.max_candidates"),
		},
		Classifier: ClassifierConfig{
			Enabled:             l.v.GetBool("classifier.enabled"),
			ConfidenceThreshold: float32(l.v.GetFloat64("classifier.confidence_threshold")),
		},
		Recognizer: RecognizerConfig{
			TargetHeight:  l.v.GetInt("recognizer.target_height"),
			MaxBucket:     l.v.GetInt("recognizer.max_bucket"),
			ConfThreshold: float32(l.v.GetFloat64("recognizer.conf_threshold")),
		},
		Async: AsyncConfig{
			QueueDepth: l.v.GetInt("async.queue_depth"),
			ResultTTL:  l.v.GetDuration("async.result_ttl"),
		},
		Runtime: RuntimeConfig{
			UseGPU:     l.v.GetBool("runtime.use_gpu"),
			DeviceID:   l.v.GetInt("runtime.device_id"),
			NumThreads: l.v.GetInt("runtime.num_threads"),
		},
	}
	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if cfg.Async.QueueDepth <= 0 {
		return fmt.Errorf("config: async.queue_depth must be positive, got %d", cfg.Async.QueueDepth)
	}
	if cfg.Detector.BinThreshold <= 0 || cfg.Detector.BinThreshold >= 1 {
		return fmt.Errorf("config: detector.bin_threshold must be in (0,1), got %f", cfg.Detector.BinThreshold)
	}
	return nil
}

// ToDocPreprocConfig converts the nested config into docpreproc.Config.
func (c Config) ToDocPreprocConfig() docpreproc.Config {
	return docpreproc.Config{
		EnableOrientation:   c.DocPreproc.EnableOrientation,
		EnableUnwarp:        c.DocPreproc.EnableUnwarp,
		ConfidenceThreshold: c.DocPreproc.ConfidenceThreshold,
	}
}

// ToDetectorConfig converts the nested config into detector.Config.
func (c Config) ToDetectorConfig() detector.Config {
	return detector.Config{
		SizeThreshold: c.Detector.SizeThreshold,
		BinThreshold:  c.Detector.BinThreshold,
		BoxThreshold:  c.Detector.BoxThreshold,
		UnclipRatio:   c.Detector.UnclipRatio,
		MinBoxArea:    c.Detector.MinBoxArea,
		MaxCandidates: c.Detector.MaxCandidates,
	}
}

// ToRecognizerConfig converts the nested config into recognizer.Config.
func (c Config) ToRecognizerConfig() recognizer.Config {
	return recognizer.Config{
		TargetHeight:  c.Recognizer.TargetHeight,
		MaxBucket:     c.Recognizer.MaxBucket,
		ConfThreshold: c.Recognizer.ConfThreshold,
	}
}

// ToAsyncConfig converts the nested config into asyncpipeline.Config.
func (c Config) ToAsyncConfig() asyncpipeline.Config {
	return asyncpipeline.Config{
		QueueDepth: c.Async.QueueDepth,
		ResultTTL:  c.Async.ResultTTL,
	}
}

// ToGPUConfig converts the nested config into onnxrt.GPUConfig.
func (c Config) ToGPUConfig() onnxrt.GPUConfig {
	gpu := onnxrt.DefaultGPUConfig()
	gpu.UseGPU = c.Runtime.UseGPU
	gpu.DeviceID = c.Runtime.DeviceID
	return gpu
}

// NewClassifierThreshold exposes the classifier confidence threshold;
// classifier.New takes it directly rather than a whole config struct since
// it has no other tunables yet.
func (c Config) NewClassifierThreshold() float32 {
	return c.Classifier.ConfidenceThreshold
}

// ToInitConfig converts the full layered config into the pipeline.InitConfig
// Pipeline.Initialize needs to load every model artifact.
func (c Config) ToInitConfig() pipeline.InitConfig {
	return pipeline.InitConfig{
		ModelsDir:                     c.ModelsDir,
		GPU:                           c.ToGPUConfig(),
		NumThreads:                    c.Runtime.NumThreads,
		DocPreproc:                    c.ToDocPreprocConfig(),
		Detector:                      c.ToDetectorConfig(),
		Recognizer:                    c.ToRecognizerConfig(),
		ClassifierEnabled:             c.Classifier.Enabled,
		ClassifierConfidenceThreshold: c.NewClassifierThreshold(),
	}
}
