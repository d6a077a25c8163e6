package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/metapatch/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAborted = errors.New("permission denied")

func sizedModel(t *testing.T, h *Handler) TeaModel {
	t.Helper()

	updated, _ := NewTeaModel(h, func() {}).Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	m, ok := updated.(TeaModel)
	require.True(t, ok)

	return m
}

func poll(t *testing.T, m TeaModel, h *Handler) TeaModel {
	t.Helper()

	msg := pollProgress(h)()
	updated, _ := m.Update(msg)
	m, ok := updated.(TeaModel)
	require.True(t, ok)

	return m
}

// TestTeaModel_Finished_NoFiles tests that a run without any matching files
// is shown as finished once it has ended.
func TestTeaModel_Finished_NoFiles(t *testing.T) {
	t.Parallel()

	h := &Handler{progress: queue.NewGenericQueue[string]()}
	m := sizedModel(t, h)

	m = poll(t, m, h)
	assert.NotContains(t, m.View(), "Finished=")
	assert.Contains(t, m.View(), "ETA=")

	h.Finish(nil)
	m = poll(t, m, h)

	view := m.View()
	assert.Contains(t, view, "Finished=")
	assert.Contains(t, view, "no matching files")
	assert.NotContains(t, view, "ETA=")
}

// TestTeaModel_Finished_Aborted tests that a run stopped at a failing file,
// leaving files unprocessed in the queue, is shown as finished and failed.
func TestTeaModel_Finished_Aborted(t *testing.T) {
	t.Parallel()

	q := queue.NewGenericQueue[string]()
	q.Enqueue("Gear.png.meta", "Pipe.png.meta")
	_ = q.DequeueAndProcess(t.Context(), func(string) int {
		return queue.DecisionAbort
	})
	require.False(t, q.Progress().HasFinished)

	h := &Handler{progress: q}
	m := sizedModel(t, h)

	h.Finish(errAborted)
	m = poll(t, m, h)

	view := m.View()
	assert.Contains(t, view, "Finished=")
	assert.Contains(t, view, "failed:")
	assert.NotContains(t, view, "ETA=")
}
