// Package sheet stores appended registration rows. A sheet is append-only
// and holds at most one row per matricule.
package sheet

import (
	"context"

	"github.com/okian/roster/internal/domain/model"
)

// Sheet is the tabular storage behind the append store.
type Sheet interface {
	// Init creates the sheet and its header row if they do not exist yet.
	// It reports whether anything was created.
	Init(ctx context.Context) (bool, error)

	// Header returns the header row. Empty before Init.
	Header(ctx context.Context) ([]string, error)

	// Contains reports whether a row with matricule id exists. Ids are
	// compared as stored; callers normalize first.
	Contains(ctx context.Context, id string) (bool, error)

	// Append adds row. It returns ErrDuplicate if row.ID is present.
	Append(ctx context.Context, row model.Row) error

	// Rows returns all rows in append order.
	Rows(ctx context.Context) ([]model.Row, error)

	// Count returns the number of rows, header excluded.
	Count(ctx context.Context) (int, error)

	Close() error
}
