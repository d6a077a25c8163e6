package patcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/desertwitch/metapatch/internal/queue"
)

// Run enumerates dir and patches all matching files sequentially. The
// returned [Report] is never nil, even when an error is returned.
//
// A failing file is recorded and skipped, with the run returning
// [ErrFilesFailed] at the end. When configured to fail fast, the run instead
// stops at the first failing file and returns its error, leaving the files
// processed before it patched. A context cancellation is only checked between
// files, never interrupting a file mid-write.
func (h *Handler) Run(ctx context.Context, dir string) (*Report, error) {
	report := &Report{
		DryRun:    h.dryRun,
		StartTime: time.Now(),
	}
	defer func() {
		report.FinishTime = time.Now()
	}()

	files, err := h.Enumerate(dir)
	if err != nil {
		return report, fmt.Errorf("(patcher) %w", err)
	}

	if len(files) == 0 {
		slog.Warn("No matching files found.", "dir", dir, "filter", h.filter)

		return report, nil
	}

	slog.Info("Patching files:", "dir", dir, "files", len(files), "dryRun", h.dryRun)

	h.queue.Enqueue(files...)

	var firstErr error

	err = h.queue.DequeueAndProcess(ctx, func(path string) int {
		res, err := h.PatchFile(path)
		if err != nil {
			report.add(&Result{Path: path, Err: err})

			if h.failFast {
				slog.Error("Aborting: failure during patching", "path", path, "err", err)
				firstErr = fmt.Errorf("%s: %w", path, err)

				return queue.DecisionAbort
			}

			slog.Warn("Skipped file: failure during patching", "path", path, "err", err)

			return queue.DecisionSkipped
		}

		report.add(res)
		logResult(res, h.dryRun)

		return queue.DecisionSuccess
	})
	if err != nil {
		if errors.Is(err, queue.ErrProcessingAborted) && firstErr != nil {
			return report, fmt.Errorf("(patcher) %w", firstErr)
		}

		return report, fmt.Errorf("(patcher) %w", err)
	}

	if failed := len(report.Failed()); failed > 0 {
		return report, fmt.Errorf("(patcher) %w: %d of %d", ErrFilesFailed, failed, len(files))
	}

	return report, nil
}

func logResult(res *Result, dryRun bool) {
	switch {
	case res.Changed && dryRun:
		slog.Info("Would patch:", "path", res.Path, "replaced", res.Replaced)
	case res.Changed:
		slog.Info("Patched:", "path", res.Path, "replaced", res.Replaced)
	default:
		slog.Debug("Unchanged:", "path", res.Path, "written", res.Written)
	}
}
