package localstore

import "errors"

var (
	// ErrCorruptState is returned when the state file cannot be decoded.
	ErrCorruptState = errors.New("local state is corrupt")
	// ErrWriteState is returned when the state file cannot be replaced.
	ErrWriteState = errors.New("failed to write local state")
)
