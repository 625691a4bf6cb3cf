package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/glyphlane/oar/internal/imageio"
	"github.com/glyphlane/oar/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process [image]",
	Short: "Run the full OCR pipeline over a single image",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	img, _, err := imageio.LoadImage(args[0])
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	p := pipeline.New()
	if _, err := p.Initialize(cfg.ToInitConfig()); err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	defer p.Stop()

	result, err := p.Process(img, pipeline.TaskConfig{})
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	slog.Info("processed page", "lines", result.Stats.LineCount, "total_time", result.Stats.TotalTime)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
