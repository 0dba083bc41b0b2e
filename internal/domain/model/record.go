// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TechnologySeparator joins technologies into the flattened row form.
const TechnologySeparator = ", "

// Header is the column header row of the sheet.
var Header = []string{"Matricule", "Name", "Work Area", "Technologies", "Submitted At"}

// Draft is the in-progress form state.
type Draft struct {
	ID           string
	Name         string
	WorkArea     string
	Technologies []string
}

// Clone returns a copy that shares no memory with d.
func (d Draft) Clone() Draft {
	c := d
	if d.Technologies != nil {
		c.Technologies = append([]string(nil), d.Technologies...)
	}
	return c
}

// IsEmpty reports whether no field is set.
func (d Draft) IsEmpty() bool {
	return d.ID == "" && d.Name == "" && d.WorkArea == "" && len(d.Technologies) == 0
}

// Record is one finalized submission. It is never mutated after creation.
type Record struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	WorkArea     string   `json:"workArea"`
	Technologies []string `json:"technologies"`
	SubmittedAt  string   `json:"submittedAt"`
}

// Row flattens r into its stored form.
func (r Record) Row() Row {
	return Row{
		ID:           r.ID,
		Name:         r.Name,
		WorkArea:     r.WorkArea,
		Technologies: JoinTechnologies(r.Technologies),
		SubmittedAt:  r.SubmittedAt,
	}
}

// Row is a record as stored in history and in the sheet.
type Row struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	WorkArea     string `json:"workArea"`
	Technologies string `json:"technologies"`
	SubmittedAt  string `json:"submittedAt"`
}

// Values returns the row in Header order.
func (r Row) Values() []string {
	return []string{r.ID, r.Name, r.WorkArea, r.Technologies, r.SubmittedAt}
}

// JoinTechnologies flattens a technology list. Duplicates are kept.
func JoinTechnologies(techs []string) string {
	return strings.Join(techs, TechnologySeparator)
}

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
