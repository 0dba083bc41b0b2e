package form

import (
	"errors"

	"github.com/okian/roster/internal/domain/catalog"
)

// Validation errors, in the order Submit checks them.
var (
	ErrMissingID           = errors.New("missing id")
	ErrMissingName         = errors.New("missing name")
	ErrMissingWorkArea     = errors.New("missing work area")
	ErrMissingTechnologies = errors.New("missing technologies")
)

var (
	// ErrDuplicate is returned when the normalized id was already submitted
	// from this client.
	ErrDuplicate = errors.New("duplicate submission")

	// ErrPersist wraps a failure to write local state. Nothing is reset.
	ErrPersist = errors.New("failed to persist submission")

	// ErrUnknownField is returned by UpdateField for an unsupported name.
	ErrUnknownField = errors.New("unknown field")
)

// User-facing messages.
const (
	MsgMissingID           = "Please enter your matricule"
	MsgMissingName         = "Please enter your name"
	MsgMissingWorkArea     = "Please select a work area"
	MsgMissingTechnologies = "Please select at least one technology"
	MsgUnknownWorkArea     = "Please select one of the listed work areas"
	MsgUnknownTechnology   = "Please select only listed technologies"
	MsgDuplicate           = "This matricule has already been submitted"
	MsgPersist             = "Your submission could not be saved, please try again"
	MsgSuccess             = "Form submitted successfully!"
)

// Message returns the user-facing text for an error returned by Submit.
func Message(err error) string {
	switch {
	case err == nil:
		return MsgSuccess
	case errors.Is(err, ErrMissingID):
		return MsgMissingID
	case errors.Is(err, ErrMissingName):
		return MsgMissingName
	case errors.Is(err, ErrMissingWorkArea):
		return MsgMissingWorkArea
	case errors.Is(err, ErrMissingTechnologies):
		return MsgMissingTechnologies
	case errors.Is(err, catalog.ErrUnknownWorkArea):
		return MsgUnknownWorkArea
	case errors.Is(err, catalog.ErrUnknownTechnology):
		return MsgUnknownTechnology
	case errors.Is(err, ErrDuplicate):
		return MsgDuplicate
	default:
		return MsgPersist
	}
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingID) ||
		errors.Is(err, ErrMissingName) ||
		errors.Is(err, ErrMissingWorkArea) ||
		errors.Is(err, ErrMissingTechnologies) ||
		errors.Is(err, catalog.ErrUnknownWorkArea) ||
		errors.Is(err, catalog.ErrUnknownTechnology)
}
