package patcher

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// Result is the outcome of patching a single file.
type Result struct {
	Path     string
	Size     int64
	Replaced int
	Changed  bool
	Written  bool
	Err      error
}

// PatchFile replaces all occurrences of the search string in the file at path
// and writes the result back in place. The file is held under an exclusive
// advisory lock while it is read, rewritten and verified.
//
// Files without any occurrence are rewritten unchanged, unless the [Handler]
// was configured to skip them. Nothing is written in a dry-run. In both of
// these modes the file is first inspected read-only under a shared lock, so
// that read-only files needing no write are not reported as failures.
func (h *Handler) PatchFile(path string) (*Result, error) {
	if h.dryRun || h.skipUnchanged {
		res, err := h.inspect(path)
		if err != nil || h.dryRun || !res.Changed {
			return res, err
		}
	}

	return h.rewrite(path)
}

// inspect computes the [Result] for the file at path without writing.
func (h *Handler) inspect(path string) (*Result, error) {
	f, err := h.openLocked(path, os.O_RDONLY, unix.LOCK_SH)
	if err != nil {
		return nil, err
	}
	defer h.closeLocked(f)

	res, _, err := h.load(f, path)

	return res, err
}

// rewrite performs the full read-modify-write of the file at path.
func (h *Handler) rewrite(path string) (*Result, error) {
	f, err := h.openLocked(path, os.O_RDWR, unix.LOCK_EX)
	if err != nil {
		return nil, err
	}
	defer h.closeLocked(f)

	res, out, err := h.load(f, path)
	if err != nil {
		return nil, err
	}

	if err := writeBack(f, out); err != nil {
		return nil, err
	}

	if err := verify(f, out); err != nil {
		return nil, err
	}

	res.Written = true

	return res, nil
}

func (h *Handler) openLocked(path string, flag int, lock int) (*os.File, error) {
	f, err := h.osOps.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if err := h.unixOps.Flock(int(f.Fd()), lock); err != nil {
		f.Close()

		return nil, fmt.Errorf("failed to lock file: %w", err)
	}

	return f, nil
}

func (h *Handler) closeLocked(f *os.File) {
	_ = h.unixOps.Flock(int(f.Fd()), unix.LOCK_UN)
	f.Close()
}

// load reads the whole file and returns its [Result] and patched content.
func (h *Handler) load(f *os.File, path string) (*Result, []byte, error) {
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	res := &Result{
		Path:     path,
		Size:     int64(len(buf)),
		Replaced: bytes.Count(buf, h.search),
	}

	out := buf
	if res.Replaced > 0 {
		out = bytes.ReplaceAll(buf, h.search, h.replace)
		res.Changed = !bytes.Equal(out, buf)
	}

	return res, out, nil
}

func writeBack(f *os.File, out []byte) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate file: %w", err)
	}

	if _, err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	return nil
}

func verify(f *os.File, out []byte) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file for verification: %w", err)
	}

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("failed to read back file: %w", err)
	}

	want := blake3.Sum256(out)
	if !bytes.Equal(hasher.Sum(nil), want[:]) {
		slog.Error("Hash mismatch after write:", "path", f.Name(), "want", fmt.Sprintf("%x", want))

		return ErrVerifyMismatch
	}

	return nil
}
