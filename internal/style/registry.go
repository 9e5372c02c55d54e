package style

import (
	"errors"
	"fmt"
	"sync"
)

// Errors returned by registry operations.
var (
	// ErrStyleNotFound indicates an operation on a handle the registry does not know.
	ErrStyleNotFound = errors.New("style not found")

	// ErrRefCount indicates a release of more references than are held.
	ErrRefCount = errors.New("style reference count underflow")
)

// Handle identifies an interned style.
type Handle uint32

// Inherit is the tag for characters that use the default style.
// It is never stored in the registry and retaining or releasing it is a no-op.
const Inherit Handle = 0

type record struct {
	style Style
	refs  int
}

// Registry interns styles and reference-counts them.
type Registry struct {
	mu      sync.Mutex
	records map[Handle]*record
	byStyle map[Style]Handle
	next    Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[Handle]*record),
		byStyle: make(map[Style]Handle),
		next:    1,
	}
}

// Intern returns the handle of a style structurally equal to st, creating
// a record if none exists. An empty style interns to Inherit.
// A freshly created record holds no references; it is freed by the first
// release that brings it back to zero, or by Collect.
func (r *Registry) Intern(st Style) Handle {
	if st.IsEmpty() {
		return Inherit
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.byStyle[st]; ok {
		return h
	}
	h := r.next
	r.next++
	r.records[h] = &record{style: st}
	r.byStyle[st] = h
	return h
}

// Acquire interns st and takes one reference on the result in a single
// step, so no other user of the registry can free it in between. The
// caller releases the reference when done.
func (r *Registry) Acquire(st Style) Handle {
	if st.IsEmpty() {
		return Inherit
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.byStyle[st]
	if !ok {
		h = r.next
		r.next++
		r.records[h] = &record{style: st}
		r.byStyle[st] = h
	}
	r.records[h].refs++
	return h
}

// Get returns the style for a handle. Inherit yields the empty style.
func (r *Registry) Get(h Handle) (Style, bool) {
	if h == Inherit {
		return Style{}, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[h]
	if !ok {
		return Style{}, false
	}
	return rec.style, true
}

// Retain adds n references to h.
func (r *Registry) Retain(h Handle, n int) error {
	if h == Inherit || n == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[h]
	if !ok {
		return contractViolation(fmt.Errorf("retain handle %d: %w", h, ErrStyleNotFound))
	}
	rec.refs += n
	return nil
}

// Release drops n references from h and frees the record when none remain.
func (r *Registry) Release(h Handle, n int) error {
	if h == Inherit || n == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[h]
	if !ok {
		return contractViolation(fmt.Errorf("release handle %d: %w", h, ErrStyleNotFound))
	}
	if rec.refs < n {
		return contractViolation(fmt.Errorf("release %d of %d references on handle %d: %w", n, rec.refs, h, ErrRefCount))
	}
	rec.refs -= n
	if rec.refs == 0 {
		delete(r.records, h)
		delete(r.byStyle, rec.style)
	}
	return nil
}

// Refs returns the reference count of h, or -1 if h is unknown.
func (r *Registry) Refs(h Handle) int {
	if h == Inherit {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[h]; ok {
		return rec.refs
	}
	return -1
}

// Merge acquires the overlay of partial onto the style of h. The caller
// owns one reference on the returned handle.
func (r *Registry) Merge(h Handle, partial Style) (Handle, error) {
	base, ok := r.Get(h)
	if !ok {
		return Inherit, contractViolation(fmt.Errorf("merge onto handle %d: %w", h, ErrStyleNotFound))
	}
	return r.Acquire(Overlay(base, partial)), nil
}

// Resolve returns the effective style of h over defaults.
// Unknown handles resolve to defaults.
func (r *Registry) Resolve(defaults Style, h Handle) Style {
	st, ok := r.Get(h)
	if !ok {
		return defaults
	}
	return Overlay(defaults, st)
}

// Collect frees records that were interned but never retained.
// It returns the number of records freed.
func (r *Registry) Collect() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	freed := 0
	for h, rec := range r.records {
		if rec.refs == 0 {
			delete(r.records, h)
			delete(r.byStyle, rec.style)
			freed++
		}
	}
	return freed
}

// Len returns the number of live records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
