// Package patcher implements the batch substitution of literal values in
// Unity sidecar (.meta) files. Matching files are read fully into memory, all
// occurrences of the search string are replaced and the result is written back
// to the same path, one file at a time.
package patcher

import (
	"fmt"
	"os"

	"github.com/desertwitch/metapatch/internal/configuration"
	"github.com/desertwitch/metapatch/internal/queue"
	ignore "github.com/sabhiram/go-gitignore"
)

type osProvider interface {
	ReadDir(name string) ([]os.DirEntry, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	Stat(name string) (os.FileInfo, error)
}

type unixProvider interface {
	Flock(fd int, how int) error
}

// Handler is the principal implementation of the meta value patcher.
type Handler struct {
	search  []byte
	replace []byte

	filter   string
	excludes *ignore.GitIgnore
	ignored  map[string]struct{}

	failFast      bool
	skipUnchanged bool
	dryRun        bool

	queue *queue.GenericQueue[string]

	osOps   osProvider
	unixOps unixProvider
}

// NewHandler returns a pointer to a new [Handler] for the given [Options].
// Any ignoredNames (base names) are never enumerated, regardless of the filter.
//
// [Options]: configuration.Options
func NewHandler(opts *configuration.Options, osOps osProvider, unixOps unixProvider, ignoredNames ...string) (*Handler, error) {
	if opts.Substitution.Search == "" {
		return nil, fmt.Errorf("(patcher) %w", ErrEmptySearch)
	}

	h := &Handler{
		search:        []byte(opts.Substitution.Search),
		replace:       []byte(opts.Substitution.Replace),
		filter:        opts.Filter,
		ignored:       make(map[string]struct{}, len(ignoredNames)),
		failFast:      opts.FailFast,
		skipUnchanged: opts.SkipUnchanged,
		dryRun:        opts.DryRun,
		queue:         queue.NewGenericQueue[string](),
		osOps:         osOps,
		unixOps:       unixOps,
	}

	if len(opts.Exclude) > 0 {
		h.excludes = ignore.CompileIgnoreLines(opts.Exclude...)
	}

	for _, name := range ignoredNames {
		h.ignored[name] = struct{}{}
	}

	return h, nil
}

// Progress returns the current [queue.Progress] of the patch run.
func (h *Handler) Progress() queue.Progress {
	return h.queue.Progress()
}
