package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	// DefaultFilter is the filename substring selecting Unity sidecar files.
	DefaultFilter = ".meta"

	// DefaultConfigFile is the configuration file looked up in the target
	// directory. Its name must not contain [DefaultFilter].
	DefaultConfigFile = "metapatch.env"
)

// Substitution is a literal search and replacement pair.
type Substitution struct {
	Search  string
	Replace string
}

// Presets are the named substitutions for the known sprite folders.
//
//nolint:gochecknoglobals
var Presets = map[string]Substitution{
	"metallic": {
		Search:  "spritePixelsToUnits: 430",
		Replace: "  spritePixelsToUnits: 430",
	},
	"usine": {
		Search:  "spritePixelsToUnits: 100",
		Replace: "  spritePixelsToUnits: 27",
	},
}

// LookupPreset returns the [Substitution] for a preset name (case-insensitive).
func LookupPreset(name string) (Substitution, error) {
	sub, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Substitution{}, fmt.Errorf("(config-preset) %w: %q", ErrUnknownPreset, name)
	}

	return sub, nil
}

// Overrides holds values set on the command-line. A nil field was not set and
// leaves the configuration file (or default) value in place.
type Overrides struct {
	Preset        *string
	Search        *string
	Replace       *string
	Filter        *string
	Exclude       []string
	FailFast      *bool
	SkipUnchanged *bool
	DryRun        *bool
}

// Options is the fully resolved configuration of a patch run.
type Options struct {
	Preset        string
	Substitution  Substitution
	Filter        string
	Exclude       []string
	FailFast      bool
	SkipUnchanged bool
	DryRun        bool
}

// ReadConfigFile reads a configuration file into a map. A file that does not
// exist yields an empty map, unless it is required.
func (c *Handler) ReadConfigFile(path string, required bool) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("(config) %w", err)
	}

	return c.ReadGeneric(path)
}

// Resolve merges a configuration file map with the command-line overrides.
// Command-line values take precedence over the file, the file over defaults.
// A search string (from either source) takes precedence over a preset, except
// that a preset given on the command-line beats a search string from the file.
// A replacement given on the command-line also applies to a preset's search.
func (c *Handler) Resolve(envMap map[string]string, ovr Overrides) (*Options, error) {
	opts := &Options{
		Filter:        DefaultFilter,
		Exclude:       c.MapKeyToList(envMap, KeyExclude),
		FailFast:      c.MapKeyToBool(envMap, KeyFailFast),
		SkipUnchanged: c.MapKeyToBool(envMap, KeySkipUnchanged),
		DryRun:        c.MapKeyToBool(envMap, KeyDryRun),
	}

	if filter, exists := envMap[KeyFilter]; exists {
		opts.Filter = filter
	}
	if ovr.Filter != nil {
		opts.Filter = *ovr.Filter
	}
	if opts.Filter == "" {
		return nil, fmt.Errorf("(config-resolve) %w", ErrEmptyFilter)
	}

	opts.Exclude = append(opts.Exclude, ovr.Exclude...)

	if ovr.FailFast != nil {
		opts.FailFast = *ovr.FailFast
	}
	if ovr.SkipUnchanged != nil {
		opts.SkipUnchanged = *ovr.SkipUnchanged
	}
	if ovr.DryRun != nil {
		opts.DryRun = *ovr.DryRun
	}

	preset := pick(ovr.Preset, c.MapKeyToString(envMap, KeyPreset))
	search := pick(ovr.Search, c.MapKeyToString(envMap, KeySearch))
	replace := pick(ovr.Replace, c.MapKeyToString(envMap, KeyReplace))

	presetWins := ovr.Preset != nil && *ovr.Preset != "" && ovr.Search == nil

	switch {
	case search != "" && !presetWins:
		opts.Substitution = Substitution{Search: search, Replace: replace}

	case preset != "":
		sub, err := LookupPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("(config-resolve) %w", err)
		}
		if ovr.Replace != nil {
			sub.Replace = *ovr.Replace
		}
		opts.Preset = strings.ToLower(strings.TrimSpace(preset))
		opts.Substitution = sub

	default:
		return nil, fmt.Errorf("(config-resolve) %w", ErrNoSubstitution)
	}

	return opts, nil
}

func pick(override *string, fallback string) string {
	if override != nil {
		return *override
	}

	return fallback
}
