// Package catalog holds the selectable work areas and technologies and the
// policy applied to values outside them.
package catalog

import (
	"fmt"

	"github.com/okian/roster/internal/config"
)

// Policy decides what happens to a value that is not in the catalog.
type Policy string

const (
	// Passthrough accepts unknown values unchanged.
	Passthrough Policy = config.PolicyPassthrough
	// Reject refuses unknown values.
	Reject Policy = config.PolicyReject
)

// WorkArea is one selectable work area.
type WorkArea struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	areas        []WorkArea
	labels       map[string]string
	knownLabels  map[string]struct{}
	technologies []string
	knownTechs   map[string]struct{}
	areaPolicy   Policy
	techPolicy   Policy
}

// New builds a catalog. Both policies default to Passthrough.
func New(areas []WorkArea, technologies []string, opts ...Option) *Catalog {
	c := &Catalog{
		areas:        append([]WorkArea(nil), areas...),
		labels:       make(map[string]string, len(areas)),
		knownLabels:  make(map[string]struct{}, len(areas)),
		technologies: append([]string(nil), technologies...),
		knownTechs:   make(map[string]struct{}, len(technologies)),
		areaPolicy:   Passthrough,
		techPolicy:   Passthrough,
	}
	for _, a := range c.areas {
		label := a.Label
		if label == "" {
			label = a.ID
		}
		c.labels[a.ID] = label
		c.knownLabels[label] = struct{}{}
	}
	for _, t := range c.technologies {
		c.knownTechs[t] = struct{}{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return FromConfig(config.New())
}

// FromConfig builds the catalog described by cfg.
func FromConfig(cfg *config.Config) *Catalog {
	areas := make([]WorkArea, 0, len(cfg.WorkAreas))
	for _, wa := range cfg.WorkAreas {
		areas = append(areas, WorkArea{ID: wa.ID, Label: wa.Label})
	}
	return New(areas, cfg.Technologies,
		WithWorkAreaPolicy(Policy(cfg.UnknownWorkAreaPolicy)),
		WithTechnologyPolicy(Policy(cfg.UnknownTechnologyPolicy)),
	)
}

// WorkAreas returns the work areas in display order.
func (c *Catalog) WorkAreas() []WorkArea {
	return append([]WorkArea(nil), c.areas...)
}

// Technologies returns the technologies in display order.
func (c *Catalog) Technologies() []string {
	return append([]string(nil), c.technologies...)
}

// Label maps a work-area id to its display label. Labels map to themselves
// and anything else is returned unchanged.
func (c *Catalog) Label(area string) string {
	if label, ok := c.labels[area]; ok {
		return label
	}
	return area
}

// KnownWorkArea reports whether area is a catalog id or label.
func (c *Catalog) KnownWorkArea(area string) bool {
	if _, ok := c.labels[area]; ok {
		return true
	}
	_, ok := c.knownLabels[area]
	return ok
}

// CheckWorkArea applies the work-area policy to area.
func (c *Catalog) CheckWorkArea(area string) error {
	if c.areaPolicy == Reject && !c.KnownWorkArea(area) {
		return fmt.Errorf("%w: %q", ErrUnknownWorkArea, area)
	}
	return nil
}

// CheckTechnologies applies the technology policy; the first unknown
// value is reported.
func (c *Catalog) CheckTechnologies(techs []string) error {
	if c.techPolicy != Reject {
		return nil
	}
	for _, t := range techs {
		if _, ok := c.knownTechs[t]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTechnology, t)
		}
	}
	return nil
}
