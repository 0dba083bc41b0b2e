package app

import "errors"

var (
	// ErrMissingID is returned when a submission has no id after trimming.
	ErrMissingID = errors.New("missing matricule")
	// ErrDuplicate is returned when the normalized id is already stored.
	ErrDuplicate = errors.New("matricule already submitted")
	// ErrRejected is returned when the catalog policy refuses a value.
	ErrRejected = errors.New("submission rejected")
	// ErrStoreUnavailable wraps sheet initialization and write failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotStarted is returned by Append before Start.
	ErrNotStarted = errors.New("service not started")
)
