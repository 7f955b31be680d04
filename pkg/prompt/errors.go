package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrUnknownFormat is returned by Serialize for unsupported formats.
	ErrUnknownFormat = errors.New("prompt: unknown output format")
)
