package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
)

// DuplicateObjectError reports two scene objects sharing one GUID.
type DuplicateObjectError struct {
	ID uuid.UUID
}

func (e *DuplicateObjectError) Error() string {
	return fmt.Sprintf("duplicate scene object id %s", e.ID)
}

// Objects is an immutable GUID to object mapping.
type Objects struct {
	byID map[uuid.UUID]scene.Object
}

// Build creates a snapshot from records. A repeated id is rejected with a
// *DuplicateObjectError; nothing is overwritten.
func Build(records []scene.Record) (*Objects, error) {
	byID := make(map[uuid.UUID]scene.Object, len(records))
	for _, rec := range records {
		if _, exists := byID[rec.ID]; exists {
			return nil, &DuplicateObjectError{ID: rec.ID}
		}
		byID[rec.ID] = rec.Object
	}
	return &Objects{byID: byID}, nil
}

// Resolve looks up an object by id.
func (o *Objects) Resolve(id uuid.UUID) (scene.Object, bool) {
	if o == nil {
		return nil, false
	}
	obj, ok := o.byID[id]
	return obj, ok
}

// Len returns the number of objects in the snapshot.
func (o *Objects) Len() int {
	if o == nil {
		return 0
	}
	return len(o.byID)
}

// Registry is the object registry owned by one scene manager.
type Registry struct {
	mu      sync.RWMutex
	current *Objects
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Publish replaces the whole mapping with objects.
func (r *Registry) Publish(objects *Objects) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = objects
}

// Clear drops the current mapping.
func (r *Registry) Clear() {
	r.Publish(nil)
}

// Resolve looks up an object in the current mapping. Before the first
// publish every lookup misses.
func (r *Registry) Resolve(id uuid.UUID) (scene.Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Resolve(id)
}

// Len returns the size of the current mapping.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Len()
}
