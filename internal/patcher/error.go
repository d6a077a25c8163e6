package patcher

import "errors"

var (
	// ErrEmptySearch occurs when a [Handler] is constructed with an empty
	// search string, which would match between every byte of a file.
	ErrEmptySearch = errors.New("search string is empty")

	// ErrVerifyMismatch occurs when the content read back after writing a file
	// does not match the content that was intended to be written.
	ErrVerifyMismatch = errors.New("written content does not match (hash mismatch)")

	// ErrFilesFailed occurs at the end of a continue-on-error run, when at
	// least one of the files could not be patched.
	ErrFilesFailed = errors.New("one or more files failed")
)
