// Package dedupe tracks normalized submission ids so a known id is never
// submitted twice from the same client or appended twice to the store.
package dedupe

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize trims id and upper-cases it with full Unicode case mapping.
// Two ids are the same submission iff their normalized forms are equal.
func Normalize(id string) string {
	// A Caser keeps state between calls; build one per call.
	return cases.Upper(language.Und).String(strings.TrimSpace(id))
}

// Deduper records normalized ids in insertion order.
type Deduper interface {
	// Seen reports whether the normalized form of id is recorded.
	Seen(ctx context.Context, id string) bool

	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id recorded by a submission that failed to be
	// persisted, so it can be submitted again.
	Unrecord(ctx context.Context, id string)

	// Load records ids in order, skipping ones already present.
	Load(ctx context.Context, ids []string)

	// IDs returns the recorded ids in insertion order.
	IDs() []string

	Size() int64
}

// inMemoryDeduper keeps a set for lookups and a slice for order.
// It is unbounded: submitted ids are never evicted.
type inMemoryDeduper struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewInMemoryDeduper creates an empty in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	return d
}

func (d *inMemoryDeduper) Seen(_ context.Context, id string) bool {
	key := Normalize(id)
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.seen[key]
	return ok
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	key := Normalize(id)
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.recordLocked(key)
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	key := Normalize(id)
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; !ok {
		return
	}
	delete(d.seen, key)
	// Most recent ids are the likeliest to be unrecorded; scan from the back.
	for i := len(d.order) - 1; i >= 0; i-- {
		if d.order[i] == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *inMemoryDeduper) Load(_ context.Context, ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		if key := Normalize(id); key != "" {
			d.recordLocked(key)
		}
	}
}

func (d *inMemoryDeduper) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.order...)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int64(len(d.order))
}

// recordLocked adds key and reports whether it was new. Caller holds d.mu.
func (d *inMemoryDeduper) recordLocked(key string) bool {
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	return true
}
