package patcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// Enumerate returns the paths of all files in dir (not recursing) whose name
// contains the filter substring, in directory listing order. Directories and
// other non-regular entries are left out, as are excluded and ignored names.
// Symbolic links are followed and kept when they point to a regular file, or
// when they cannot be resolved at all.
func (h *Handler) Enumerate(dir string) ([]string, error) {
	entries, err := h.osOps.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("(patcher-enum) failed to read dir: %w", err)
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()

		if !strings.Contains(name, h.filter) {
			continue
		}

		if _, ok := h.ignored[name]; ok {
			continue
		}

		if h.excludes != nil && h.excludes.MatchesPath(name) {
			slog.Debug("Excluded:", "path", name)

			continue
		}

		path := filepath.Join(dir, name)

		regular, err := h.isRegular(path, entry)
		if err != nil {
			// Kept, so that the failure surfaces when the file is patched.
			slog.Warn("Failed to resolve symbolic link:", "path", path, "err", err)
		} else if !regular {
			slog.Debug("Skipped non-regular file:", "path", path)

			continue
		}

		files = append(files, path)
	}

	return files, nil
}

func (h *Handler) isRegular(path string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular(), nil
	}

	info, err := h.osOps.Stat(path)
	if err != nil {
		return false, err
	}

	return info.Mode().IsRegular(), nil
}
