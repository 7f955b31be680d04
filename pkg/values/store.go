// Package values keeps the draft and canonical value of every field in sync.
//
// A draft is exactly what the user typed. The canonical value is
// Normalize(draft) and is what the preview, completion accounting, and export
// consume. The store never reports errors: passing an unregistered field id is
// a programming error and panics.
package values

import (
	"fmt"
	"math"
	"strings"

	"github.com/goliatone/go-docfill/pkg/field"
)

// Value pairs the raw draft with its canonical form.
type Value struct {
	Draft     string
	Canonical string
}

// Entry is a snapshot row returned by Store.Snapshot.
type Entry struct {
	ID        field.ID
	Draft     string
	Canonical string
}

// Stats summarises completion.
type Stats struct {
	Filled int `json:"filled"`
	Total  int `json:"total"`
}

// Percent returns the rounded completion percentage.
func (s Stats) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Filled) / float64(s.Total) * 100))
}

// Store maps field ids to their values. It is not safe for concurrent use;
// callers serialize access the same way they serialize UI events.
type Store struct {
	registry *field.Registry
	values   map[field.ID]*Value
}

// NewStore seeds an empty value for every registered field.
func NewStore(registry *field.Registry) *Store {
	s := &Store{
		registry: registry,
		values:   make(map[field.ID]*Value, registry.Len()),
	}
	for _, id := range registry.IDs() {
		s.values[id] = &Value{}
	}
	return s
}

// SetDraft records raw as typed and recomputes the canonical value.
func (s *Store) SetDraft(id field.ID, raw string) {
	v := s.mustValue(id)
	v.Draft = raw
	v.Canonical = Normalize(raw)
}

// CommitOnBlur resynchronises the draft with the canonical value. An empty
// canonical value leaves the draft untouched.
func (s *Store) CommitOnBlur(id field.ID) {
	v := s.mustValue(id)
	if v.Canonical == "" {
		return
	}
	v.Draft = v.Canonical
}

// Draft returns the raw value for id.
func (s *Store) Draft(id field.ID) string {
	return s.mustValue(id).Draft
}

// Canonical returns the normalized value for id.
func (s *Store) Canonical(id field.ID) string {
	return s.mustValue(id).Canonical
}

// Get returns both values for id.
func (s *Store) Get(id field.ID) Value {
	return *s.mustValue(id)
}

// IsFilled reports whether the canonical value is non-empty after trimming.
func (s *Store) IsFilled(id field.ID) bool {
	return strings.TrimSpace(s.mustValue(id).Canonical) != ""
}

// CompletionStats counts filled fields against the registry size.
func (s *Store) CompletionStats() Stats {
	stats := Stats{Total: s.registry.Len()}
	for _, id := range s.registry.IDs() {
		if s.IsFilled(id) {
			stats.Filled++
		}
	}
	return stats
}

// Snapshot returns the values in document order.
func (s *Store) Snapshot() []Entry {
	ids := s.registry.IDs()
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		v := s.values[id]
		out = append(out, Entry{ID: id, Draft: v.Draft, Canonical: v.Canonical})
	}
	return out
}

// Canonicals returns the canonical values keyed by id.
func (s *Store) Canonicals() map[field.ID]string {
	out := make(map[field.ID]string, len(s.values))
	for id, v := range s.values {
		out[id] = v.Canonical
	}
	return out
}

func (s *Store) mustValue(id field.ID) *Value {
	v, ok := s.values[id]
	if !ok {
		panic(fmt.Sprintf("values: unknown field id %q", id))
	}
	return v
}
