package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/types"
)

// SubmissionsHandler handles appends and reads of the sheet.
type SubmissionsHandler struct {
	deps Dependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps Dependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// HandleAppend handles POST / and POST /submissions.
func (h *SubmissionsHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	const op = "api.append"

	var sub types.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sub); err != nil {
		writeError(w, r, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid submission body: %w", err)))
		return
	}

	if _, err := h.deps.Append(r.Context(), sub); err != nil {
		writeError(w, r, appendError(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.AppendResult{Success: true, Message: app.SuccessMessage})
}

func appendError(op string, err error) error {
	switch {
	case errors.Is(err, app.ErrDuplicate):
		return WrapKind(op, ErrConflict, errors.New(app.DuplicateMessage))
	case errors.Is(err, app.ErrMissingID):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, app.ErrRejected):
		return WrapKind(op, ErrRefused, err)
	case errors.Is(err, app.ErrNotStarted):
		return WrapKind(op, ErrUnavailable, err)
	default:
		return Wrap(op, err)
	}
}

// HandleRows handles GET /submissions. ?format=csv returns the header and
// rows as CSV; anything else returns JSON.
func (h *SubmissionsHandler) HandleRows(w http.ResponseWriter, r *http.Request) {
	const op = "api.rows"

	rows, err := h.deps.Rows(r.Context())
	if err != nil {
		writeError(w, r, appendError(op, err))
		return
	}

	if r.URL.Query().Get("format") != "csv" {
		writeJSON(w, http.StatusOK, rows)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rows.Sheet+".csv"))
	cw := csv.NewWriter(w)
	_ = cw.Write(rows.Header)
	for _, row := range rows.Rows {
		_ = cw.Write(row.Values())
	}
	cw.Flush()
}
