// Package types contains wire types shared by the append store API and its clients.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/okian/roster/internal/domain/model"
)

// Result codes carried in AppendResult.Code.
const (
	CodeDuplicate  = "duplicate"
	CodeBadRequest = "bad_request"
	CodeRejected   = "rejected"
	CodeInternal   = "internal_error"
)

// Submission is the payload accepted by the append store.
// "matricule" is accepted as an alias of "id".
type Submission struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	WorkArea     string   `json:"workArea"`
	Technologies TechList `json:"technologies"`
	SubmittedAt  string   `json:"submittedAt,omitempty"`
}

// UnmarshalJSON accepts both "id" and "matricule".
func (s *Submission) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID           string   `json:"id"`
		Matricule    string   `json:"matricule"`
		Name         string   `json:"name"`
		WorkArea     string   `json:"workArea"`
		Technologies TechList `json:"technologies"`
		SubmittedAt  string   `json:"submittedAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id := aux.ID
	if id == "" {
		id = aux.Matricule
	}
	*s = Submission{
		ID:           id,
		Name:         aux.Name,
		WorkArea:     aux.WorkArea,
		Technologies: aux.Technologies,
		SubmittedAt:  aux.SubmittedAt,
	}
	return nil
}

// SubmissionFromRecord builds the wire payload for a finalized record.
func SubmissionFromRecord(r model.Record) Submission {
	return Submission{
		ID:           r.ID,
		Name:         r.Name,
		WorkArea:     r.WorkArea,
		Technologies: TechList(r.Technologies),
		SubmittedAt:  r.SubmittedAt,
	}
}

// TechList decodes from a JSON array of strings or from a single,
// already joined string.
type TechList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TechList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("technologies must be a string or an array of strings: %w", err)
	}
	if single == "" {
		*t = nil
		return nil
	}
	*t = TechList{single}
	return nil
}

// AppendResult is the structured response of the append store.
type AppendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// RowsResponse is the read shape of GET /submissions.
type RowsResponse struct {
	Sheet  string      `json:"sheet"`
	Header []string    `json:"header"`
	Rows   []model.Row `json:"rows"`
	Count  int         `json:"count"`
}
