package patcher

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Report collects the [Result] of every file of a patch run.
type Report struct {
	sync.RWMutex
	DryRun     bool
	StartTime  time.Time
	FinishTime time.Time
	results    []*Result
}

func (r *Report) add(res *Result) {
	r.Lock()
	defer r.Unlock()

	r.results = append(r.results, res)
}

// Results returns a copy of all results, in processing order.
func (r *Report) Results() []*Result {
	r.RLock()
	defer r.RUnlock()

	results := make([]*Result, len(r.results))
	copy(results, r.results)

	return results
}

// Patched returns the results of all files that had at least one occurrence
// replaced with a different value.
func (r *Report) Patched() []*Result {
	return r.filter(func(res *Result) bool { return res.Err == nil && res.Changed })
}

// Unchanged returns the results of all files whose content stayed the same.
func (r *Report) Unchanged() []*Result {
	return r.filter(func(res *Result) bool { return res.Err == nil && !res.Changed })
}

// Failed returns the results of all files that could not be patched.
func (r *Report) Failed() []*Result {
	return r.filter(func(res *Result) bool { return res.Err != nil })
}

// Replacements returns the total number of replaced occurrences.
func (r *Report) Replacements() int {
	r.RLock()
	defer r.RUnlock()

	var total int
	for _, res := range r.results {
		if res.Err == nil {
			total += res.Replaced
		}
	}

	return total
}

// Bytes returns the total size of all successfully read files.
func (r *Report) Bytes() uint64 {
	r.RLock()
	defer r.RUnlock()

	var total uint64
	for _, res := range r.results {
		if res.Err == nil && res.Size > 0 {
			total += uint64(res.Size)
		}
	}

	return total
}

func (r *Report) filter(keep func(*Result) bool) []*Result {
	r.RLock()
	defer r.RUnlock()

	var results []*Result
	for _, res := range r.results {
		if keep(res) {
			results = append(results, res)
		}
	}

	return results
}

// LogSummary logs one line for every failed file, followed by the totals.
func (r *Report) LogSummary() {
	failed := r.Failed()

	for _, res := range failed {
		slog.Warn("Failed:", "path", res.Path, "err", res.Err)
	}

	attrs := []any{
		"patched", len(r.Patched()),
		"unchanged", len(r.Unchanged()),
		"failed", len(failed),
		"replaced", r.Replacements(),
		"size", humanize.Bytes(r.Bytes()),
		"took", r.FinishTime.Sub(r.StartTime).Round(time.Millisecond),
	}

	switch {
	case len(failed) > 0:
		slog.Error("Patch run finished with failures.", attrs...)
	case r.DryRun:
		slog.Info("Dry-run finished (nothing was written).", attrs...)
	default:
		slog.Info("Patch run finished.", attrs...)
	}
}
