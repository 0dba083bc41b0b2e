package sheet

import "errors"

var (
	// ErrDuplicate is returned by Append for a matricule already present.
	ErrDuplicate = errors.New("matricule already present")
	// ErrNotInitialized is returned when a sheet is used before Init.
	ErrNotInitialized = errors.New("sheet not initialized")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("sheet closed")
)
