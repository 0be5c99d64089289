package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateOutput is returned by RunBatch when two destinations in a
// batch resolve to the same file.
var ErrDuplicateOutput = errors.New("duplicate output path in batch")

// BatchResult pairs a request with its outcome. Exactly one of Result and
// Err is set.
type BatchResult struct {
	Name   string  `json:"name"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// RunBatch runs independent requests concurrently, at most limit at a time
// (limit <= 0 means no limit). Results are returned in request order.
//
// A failing run never cancels its siblings; its error is recorded in the
// corresponding BatchResult. Cancelling ctx stops runs at their next stage
// boundary. Every output destination must be distinct, which is checked
// before anything runs.
func (r *Runner) RunBatch(ctx context.Context, reqs []Request, limit int) ([]BatchResult, error) {
	if err := checkDistinctOutputs(reqs); err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(reqs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		g.Go(func() error {
			res, err := r.Run(ctx, req)
			results[i] = BatchResult{Name: req.Name, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// Failed counts the batch results that carry an error.
func Failed(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func checkDistinctOutputs(reqs []Request) error {
	seen := make(map[string]string)
	for i, req := range reqs {
		for _, p := range []string{req.OutputPath, req.OverlayPath, req.ContoursPath} {
			if p == "" {
				continue
			}
			key := filepath.Clean(p)
			if abs, err := filepath.Abs(key); err == nil {
				key = abs
			}
			label := fmt.Sprintf("request %d (%s)", i, req.Name)
			if prev, ok := seen[key]; ok {
				return fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateOutput, p, prev, label)
			}
			seen[key] = label
		}
	}
	return nil
}
