package loader

import (
	"errors"

	"github.com/google/uuid"
)

// ErrUnknownScene is returned by a task asked to load a scene the back end
// has no content for.
var ErrUnknownScene = errors.New("unknown scene")

// Object is a scene-bound object described by static or manifest content.
type Object struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
	Kind string    `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// GUID returns the stable object id
func (o *Object) GUID() uuid.UUID {
	return o.ID
}
