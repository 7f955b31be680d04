package field

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyID is returned when a field without an identifier is registered.
var ErrEmptyID = errors.New("field: id is required")

// Registry holds the ordered fields detected in a document. It is safe for
// concurrent readers because it is never mutated after construction.
type Registry struct {
	fields []Field
	index  map[ID]int
}

// NewRegistry builds a registry preserving the order of fields, which is
// treated as document order by every consumer.
func NewRegistry(fields ...Field) (*Registry, error) {
	r := &Registry{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[ID]int, len(fields)),
	}
	for _, f := range fields {
		if strings.TrimSpace(string(f.ID)) == "" {
			return nil, ErrEmptyID
		}
		if _, exists := r.index[f.ID]; exists {
			return nil, fmt.Errorf("field: duplicate id %q", f.ID)
		}
		r.index[f.ID] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r, nil
}

// MustRegistry panics when NewRegistry fails. Handy for fixtures.
func MustRegistry(fields ...Field) *Registry {
	r, err := NewRegistry(fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len reports the number of registered fields.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Fields returns a copy of the fields in document order.
func (r *Registry) Fields() []Field {
	if r == nil {
		return nil
	}
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// At returns the field at position i in document order.
func (r *Registry) At(i int) Field {
	return r.fields[i]
}

// Get returns the field registered under id.
func (r *Registry) Get(id ID) (Field, bool) {
	idx, ok := r.Index(id)
	if !ok {
		return Field{}, false
	}
	return r.fields[idx], true
}

// Index returns the document position of id.
func (r *Registry) Index(id ID) (int, bool) {
	if r == nil {
		return -1, false
	}
	idx, ok := r.index[id]
	if !ok {
		return -1, false
	}
	return idx, true
}

// Has reports whether id is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.Index(id)
	return ok
}

// Lookup converts untrusted input into a registered ID.
func (r *Registry) Lookup(raw string) (ID, bool) {
	id := ID(strings.TrimSpace(raw))
	if !r.Has(id) {
		return "", false
	}
	return id, true
}

// IDs returns the registered identifiers in document order.
func (r *Registry) IDs() []ID {
	if r == nil {
		return nil
	}
	out := make([]ID, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.ID
	}
	return out
}
