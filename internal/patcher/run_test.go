package patcher

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun_Success tests a full run over a sprite folder.
func TestRun_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Gear.png":       "spritePixelsToUnits: 100",
		"Gear.png.meta":  usineMeta,
		"Pipe.png.meta":  usineMeta + usineMeta,
		"Plain.png.meta": "TextureImporter:\n  spritePixelsToUnits: 64\n",
		"resizePPU.py":   "spritePixelsToUnits: 100",
		"metapatch.env":  "METAPATCH_SEARCH=\"spritePixelsToUnits: 100\"\n",
	})

	h := newTestHandler(t, presetOptions(t, "usine"))

	report, err := h.Run(t.Context(), dir)
	require.NoError(t, err)

	patched := strings.ReplaceAll(usineMeta, "spritePixelsToUnits: 100", "  spritePixelsToUnits: 27")

	assert.Equal(t, patched, readFile(t, filepath.Join(dir, "Gear.png.meta")))
	assert.Equal(t, patched+patched, readFile(t, filepath.Join(dir, "Pipe.png.meta")))
	assert.Equal(t, "TextureImporter:\n  spritePixelsToUnits: 64\n", readFile(t, filepath.Join(dir, "Plain.png.meta")))

	// Files not matching the filter are untouched.
	assert.Equal(t, "spritePixelsToUnits: 100", readFile(t, filepath.Join(dir, "Gear.png")))
	assert.Equal(t, "spritePixelsToUnits: 100", readFile(t, filepath.Join(dir, "resizePPU.py")))
	assert.Equal(t, "METAPATCH_SEARCH=\"spritePixelsToUnits: 100\"\n", readFile(t, filepath.Join(dir, "metapatch.env")))

	assert.Len(t, report.Results(), 3)
	assert.Len(t, report.Patched(), 2)
	assert.Len(t, report.Unchanged(), 1)
	assert.Empty(t, report.Failed())
	assert.Equal(t, 3, report.Replacements())
	assert.False(t, report.FinishTime.Before(report.StartTime))

	progress := h.Progress()
	assert.True(t, progress.HasFinished)
	assert.Equal(t, 3, progress.SuccessItems)
	assert.InDelta(t, 100.0, progress.ProgressPct, 0)
}

// TestRun_Twice_Table tests repeated runs of both presets. A replacement not
// containing its own search string is idempotent, one containing it is not.
func TestRun_Twice_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		preset     string
		content    string
		afterOnce  string
		afterTwice string
	}{
		{
			"Success_UsineIdempotent", "usine",
			"spritePixelsToUnits: 100\n",
			"  spritePixelsToUnits: 27\n",
			"  spritePixelsToUnits: 27\n",
		},
		{
			"Success_MetallicGrows", "metallic",
			"spritePixelsToUnits: 430\n",
			"  spritePixelsToUnits: 430\n",
			"    spritePixelsToUnits: 430\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "Sprite.png.meta")
			writeFiles(t, dir, map[string]string{"Sprite.png.meta": tc.content})

			_, err := newTestHandler(t, presetOptions(t, tc.preset)).Run(t.Context(), dir)
			require.NoError(t, err)
			assert.Equal(t, tc.afterOnce, readFile(t, path))

			_, err = newTestHandler(t, presetOptions(t, tc.preset)).Run(t.Context(), dir)
			require.NoError(t, err)
			assert.Equal(t, tc.afterTwice, readFile(t, path))
		})
	}
}

// TestRun_Empty tests a run over a folder without matching files.
func TestRun_Empty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"Gear.png": "png"})

	report, err := newTestHandler(t, presetOptions(t, "usine")).Run(t.Context(), dir)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Empty(t, report.Results())
}

// TestRun_Fail_ContinueOnError tests that a failing file is reported while
// the remaining files are still patched.
func TestRun_Fail_ContinueOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"A.png.meta": usineMeta,
		"B.png.meta": usineMeta,
		"C.png.meta": usineMeta,
	})

	h := newTestHandler(t, presetOptions(t, "usine"), "B.png.meta")

	report, err := h.Run(t.Context(), dir)
	require.ErrorIs(t, err, ErrFilesFailed)

	patched := strings.ReplaceAll(usineMeta, "spritePixelsToUnits: 100", "  spritePixelsToUnits: 27")
	assert.Equal(t, patched, readFile(t, filepath.Join(dir, "A.png.meta")))
	assert.Equal(t, usineMeta, readFile(t, filepath.Join(dir, "B.png.meta")))
	assert.Equal(t, patched, readFile(t, filepath.Join(dir, "C.png.meta")))

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, filepath.Join(dir, "B.png.meta"), failed[0].Path)
	require.ErrorIs(t, failed[0].Err, errOpenDenied)
	assert.Len(t, report.Patched(), 2)

	progress := h.Progress()
	assert.Equal(t, 2, progress.SuccessItems)
	assert.Equal(t, 1, progress.SkippedItems)
}

// TestRun_Fail_FailFast tests that the run stops at the first failing file,
// leaving earlier files patched and later files untouched.
func TestRun_Fail_FailFast(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"A.png.meta": usineMeta,
		"B.png.meta": usineMeta,
		"C.png.meta": usineMeta,
	})

	opts := presetOptions(t, "usine")
	opts.FailFast = true
	h := newTestHandler(t, opts, "B.png.meta")

	report, err := h.Run(t.Context(), dir)
	require.ErrorIs(t, err, errOpenDenied)
	assert.NotErrorIs(t, err, ErrFilesFailed)

	patched := strings.ReplaceAll(usineMeta, "spritePixelsToUnits: 100", "  spritePixelsToUnits: 27")
	assert.Equal(t, patched, readFile(t, filepath.Join(dir, "A.png.meta")))
	assert.Equal(t, usineMeta, readFile(t, filepath.Join(dir, "B.png.meta")))
	assert.Equal(t, usineMeta, readFile(t, filepath.Join(dir, "C.png.meta")))

	assert.Len(t, report.Results(), 2)
	assert.Len(t, report.Failed(), 1)
}

// TestRun_Fail_CtxCancel tests that a cancelled run touches no files.
func TestRun_Fail_CtxCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"A.png.meta": usineMeta})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report, err := newTestHandler(t, presetOptions(t, "usine")).Run(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Results())
	assert.Equal(t, usineMeta, readFile(t, filepath.Join(dir, "A.png.meta")))
}

// TestRun_DryRun tests that a dry-run reports without writing.
func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"A.png.meta": usineMeta})

	opts := presetOptions(t, "usine")
	opts.DryRun = true

	report, err := newTestHandler(t, opts).Run(t.Context(), dir)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Len(t, report.Patched(), 1)
	assert.Equal(t, usineMeta, readFile(t, filepath.Join(dir, "A.png.meta")))
}

// TestRun_Fail_MissingDir tests that an unreadable directory fails the run
// before any file is processed.
func TestRun_Fail_MissingDir(t *testing.T) {
	t.Parallel()

	report, err := newTestHandler(t, presetOptions(t, "usine")).Run(t.Context(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Empty(t, report.Results())
}
