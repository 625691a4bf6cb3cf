package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glyphlane/oar/internal/imageops"
	"github.com/glyphlane/oar/internal/pdfsource"
	"github.com/glyphlane/oar/internal/pipeline"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf [file.pdf]",
	Short: "Run the OCR pipeline over every page of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runPDF,
}

func init() {
	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pageCount, err := pdfsource.PageCount(args[0])
	if err != nil {
		return fmt.Errorf("read page count: %w", err)
	}

	firstPage, err := pdfsource.RasterizePage(args[0], 1)
	if err != nil {
		return fmt.Errorf("rasterize page 1: %w", err)
	}
	firstImg, err := imageops.FromStdImage(firstPage)
	if err != nil {
		return err
	}

	p := pipeline.New()
	if _, err := p.Initialize(cfg.ToInitConfig()); err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	defer p.Stop()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for page := 1; page <= pageCount; page++ {
		img := firstImg
		if page > 1 {
			raw, err := pdfsource.RasterizePage(args[0], page)
			if err != nil {
				return fmt.Errorf("rasterize page %d: %w", page, err)
			}
			img, err = imageops.FromStdImage(raw)
			if err != nil {
				return err
			}
		}
		result, err := p.Process(img, pipeline.TaskConfig{})
		if err != nil {
			return fmt.Errorf("process page %d: %w", page, err)
		}
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
	return nil
}
