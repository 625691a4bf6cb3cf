package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glyphlane/oar/internal/asyncpipeline"
	"github.com/glyphlane/oar/internal/imageio"
	"github.com/glyphlane/oar/internal/pipeline"
)

var batchTimeout time.Duration

var batchCmd = &cobra.Command{
	Use:   "batch [images...]",
	Short: "Push every image onto the async task queue and print results in input order",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Second, "per-task wait timeout")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	first, _, err := imageio.LoadImage(args[0])
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	inner := pipeline.New()
	if _, err := inner.Initialize(cfg.ToInitConfig()); err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	defer inner.Stop()

	async := asyncpipeline.New(inner, cfg.ToAsyncConfig())
	defer async.Stop()

	ids := make([]asyncpipeline.TaskID, 0, len(args))
	for i, path := range args {
		img := first
		if path != args[0] {
			img, _, err = imageio.LoadImage(path)
			if err != nil {
				return fmt.Errorf("load image %s: %w", path, err)
			}
		}
		id := asyncpipeline.TaskID(i)
		if err := async.PushTask(id, img, pipeline.TaskConfig{}); err != nil {
			return fmt.Errorf("push task for %s: %w", path, err)
		}
		slog.Info("queued page", "path", path, "task_id", id)
		ids = append(ids, id)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for i, id := range ids {
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		res, err := async.WaitForResult(ctx, id)
		cancel()
		if err != nil {
			return fmt.Errorf("wait for %s: %w", args[i], err)
		}
		if res.Err != nil {
			return fmt.Errorf("process %s: %w", args[i], res.Err)
		}
		if err := enc.Encode(res.Result); err != nil {
			return err
		}
	}
	return nil
}
