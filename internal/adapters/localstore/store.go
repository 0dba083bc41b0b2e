// Package localstore persists the client's submission history and
// duplicate-id cache.
package localstore

import (
	"context"

	"github.com/okian/roster/internal/domain/model"
)

// State is the persisted client state.
type State struct {
	Submissions  []model.Row `json:"submissions"`
	SubmittedIDs []string    `json:"submitted_ids"`
}

// Store loads and appends to the persisted client state.
type Store interface {
	// Load returns the current state. A store that was never written
	// returns an empty State and no error.
	Load(ctx context.Context) (State, error)

	// Append adds row to the history and row.ID to the submitted ids as
	// one write.
	Append(ctx context.Context, row model.Row) error
}

func (s State) clone() State {
	return State{
		Submissions:  append([]model.Row{}, s.Submissions...),
		SubmittedIDs: append([]string{}, s.SubmittedIDs...),
	}
}
