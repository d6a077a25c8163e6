package configuration

import "errors"

var (
	// ErrNoSubstitution occurs when neither a preset nor a search string was
	// configured, leaving nothing to replace.
	ErrNoSubstitution = errors.New("no substitution configured (need a preset or a search string)")

	// ErrUnknownPreset occurs when a preset name does not match any of the
	// known [Presets].
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrEmptyFilter occurs when the filename filter was set to an empty
	// string, which would match every file in the directory.
	ErrEmptyFilter = errors.New("filename filter is empty")
)
