// Package ui implements a command-line user interface using [tea].
package ui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/metapatch/internal/queue"
)

type progressProvider interface {
	Progress() queue.Progress
}

// RunInfo describes the patch run shown in the information panel.
type RunInfo struct {
	Dir     string
	Filter  string
	Search  string
	Replace string
	Preset  string
	DryRun  bool
}

// runOutcome is the end state of the patch run, as reported to [Handler.Finish].
type runOutcome struct {
	done bool
	err  error
	at   time.Time
}

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	progress progressProvider
	info     RunInfo
	program  *tea.Program

	LogWriter *TeaLogWriter

	Ready  atomic.Bool
	Failed atomic.Bool

	outcomeLock sync.Mutex
	outcome     runOutcome
}

// NewHandler returns a pointer to a new user interface [Handler].
func NewHandler(ctx context.Context, cancel context.CancelFunc, progress progressProvider, info RunInfo) *Handler {
	handler := &Handler{
		progress: progress,
		info:     info,
	}

	model := NewTeaModel(handler, cancel)
	handler.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Launch starts the command-line user interface (the [tea.Program]).
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}

// Finish records the end of the patch run, with err being its result. The
// progress panel then shows the run as finished, even when files were left
// unprocessed or none were found at all.
func (uiHandler *Handler) Finish(err error) {
	uiHandler.outcomeLock.Lock()
	defer uiHandler.outcomeLock.Unlock()

	uiHandler.outcome = runOutcome{done: true, err: err, at: time.Now()}
}

func (uiHandler *Handler) runOutcome() runOutcome {
	uiHandler.outcomeLock.Lock()
	defer uiHandler.outcomeLock.Unlock()

	return uiHandler.outcome
}
