package main

import (
	"errors"
	"fmt"

	"github.com/ironsheep/sat-polygons/internal/pipeline"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every extraction declared in the config file",
	Long: `Run the runs: list of the configuration file concurrently. A failing run
does not stop the others; the command exits non-zero when any run failed.`,
	RunE: runBatch,
}

var batchConcurrency int

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Maximum concurrent runs (overrides batch.concurrency)")
}

// batchSummary is printed for every run, in config order.
type batchSummary struct {
	Name   string           `json:"name"`
	Error  string           `json:"error,omitempty"`
	Result *pipeline.Result `json:"result,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	reqs, err := cfg.Requests()
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return errors.New("no runs configured")
	}

	limit := cfg.Batch.Concurrency
	if batchConcurrency > 0 {
		limit = batchConcurrency
	}

	ctx, stop := signalContext()
	defer stop()

	logger.Info("batch starting", "runs", len(reqs), "concurrency", limit)
	results, err := pipeline.NewRunner(logger).RunBatch(ctx, reqs, limit)
	if err != nil {
		return err
	}

	summaries := make([]batchSummary, len(results))
	for i, r := range results {
		summaries[i] = batchSummary{Name: r.Name, Result: r.Result}
		if r.Err != nil {
			summaries[i].Error = r.Err.Error()
			continue
		}
		logger.Info("run written", "run", r.Name, "features", r.Result.Features, "output", displayPath(r.Result.OutputPath))
	}
	if err := printJSON(summaries); err != nil {
		return err
	}

	if failed := pipeline.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return nil
}
