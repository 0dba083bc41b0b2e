package catalog

import "errors"

var (
	// ErrUnknownWorkArea is returned by CheckWorkArea under the Reject policy.
	ErrUnknownWorkArea = errors.New("unknown work area")
	// ErrUnknownTechnology is returned by CheckTechnologies under the Reject policy.
	ErrUnknownTechnology = errors.New("unknown technology")
)
