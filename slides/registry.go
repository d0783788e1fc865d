package slides

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hazyhaar/slidekit/deck"
	"github.com/hazyhaar/slidekit/idgen"
)

// ErrUnknownPresentation is returned for a handle that is not open.
var ErrUnknownPresentation = errors.New("unknown presentation")

// ErrNoHandle is returned when a request omits presentation_id.
var ErrNoHandle = errors.New("presentation_id is required")

// Document is one open presentation. Calls on the same document are
// serialized by its mutex; distinct documents proceed concurrently.
type Document struct {
	ID string

	mu   sync.Mutex
	pres *deck.Presentation
	path string
}

// Path is where the document was opened from or last saved to. It is empty
// for presentations created in memory.
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

func (d *Document) info() PresentationInfo {
	name := "Untitled"
	if d.path != "" {
		name = filepath.Base(d.path)
	}
	return PresentationInfo{
		ID:         d.ID,
		Name:       name,
		Path:       d.path,
		SlideCount: d.pres.SlideCount(),
	}
}

// Registry maps presentation handles to open documents.
type Registry struct {
	mu    sync.RWMutex
	docs  map[string]*Document
	order []string
	newID idgen.Generator
}

// NewRegistry returns an empty registry issuing handles from gen. A nil gen
// uses "prs_" prefixed UUIDv7 handles.
func NewRegistry(gen idgen.Generator) *Registry {
	if gen == nil {
		gen = idgen.Prefixed("prs_", idgen.UUIDv7())
	}
	return &Registry{docs: map[string]*Document{}, newID: gen}
}

// Add registers pres under a fresh handle.
func (r *Registry) Add(pres *deck.Presentation, path string) *Document {
	d := &Document{ID: r.newID(), pres: pres, path: path}
	r.mu.Lock()
	r.docs[d.ID] = d
	r.order = append(r.order, d.ID)
	r.mu.Unlock()
	return d
}

// Get returns the document for id.
func (r *Registry) Get(id string) (*Document, error) {
	if id == "" {
		return nil, ErrNoHandle
	}
	r.mu.RLock()
	d, ok := r.docs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPresentation, id)
	}
	return d, nil
}

// Remove forgets id. It reports whether the handle was open.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false
	}
	delete(r.docs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the open documents in the order they were opened.
func (r *Registry) List() []*Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Document, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.docs[id])
	}
	return out
}

// Len is the number of open documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
