// Package cmd implements the oar-ocr command-line entrypoint.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glyphlane/oar/internal/config"
)

var (
	cfgFile   string
	modelsDir string
	verbose   bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "oar-ocr",
	Short: "High-throughput OCR inference pipeline",
	Long: `oar-ocr runs document preprocessing, text detection, line
orientation classification and text recognition over images and PDF
pages, either synchronously or through a bounded async task queue.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		} else if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&modelsDir, "models-dir", "", "override the model artifacts directory")

	_ = viper.BindPFlag("models_dir", rootCmd.PersistentFlags().Lookup("models-dir"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadConfig builds the layered pipeline configuration for subcommands.
func loadConfig() (config.Config, error) {
	loader := config.NewLoader()
	var cfg config.Config
	var err error
	if cfgFile != "" {
		cfg, err = loader.LoadWithFile(cfgFile)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if modelsDir != "" {
		cfg.ModelsDir = modelsDir
	}
	return cfg, nil
}
