package scene

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Ref is a comparable identifier for a logical scene.
type Ref struct {
	// raw stores index+1 so that the zero value means None
	raw uint32
}

// None is the invalid scene reference.
var None = Ref{}

// FromIndex returns the reference for the scene at the given build index.
// Negative indices yield None.
func FromIndex(index int) Ref {
	if index < 0 {
		return None
	}
	return Ref{raw: uint32(index) + 1} //nolint:gosec // build indices are small
}

// IsValid reports whether r refers to a scene.
func (r Ref) IsValid() bool {
	return r.raw != 0
}

// Index returns the build index of the scene, or -1 for None.
func (r Ref) Index() int {
	if !r.IsValid() {
		return -1
	}
	return int(r.raw - 1)
}

func (r Ref) String() string {
	if !r.IsValid() {
		return "None"
	}
	return "#" + strconv.Itoa(r.Index())
}

// MarshalText encodes the scene as its build index, or "none".
func (r Ref) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return []byte("none"), nil
	}
	return []byte(strconv.Itoa(r.Index())), nil
}

// UnmarshalText accepts a build index or "none".
func (r *Ref) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "none" || s == "" {
		*r = None
		return nil
	}
	index, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid scene reference %q: %w", s, err)
	}
	if index < 0 {
		return fmt.Errorf("invalid scene reference %q: index must not be negative", s)
	}
	*r = FromIndex(index)
	return nil
}

// Object is a live object bound to a loaded scene.
type Object interface {
	// GUID returns the stable identifier of the object within its scene
	GUID() uuid.UUID
}

// Record pairs an identifier with the object it resolves to.
type Record struct {
	ID     uuid.UUID
	Object Object
}

// Records converts objects into records keyed by their GUID.
func Records(objects []Object) []Record {
	records := make([]Record, 0, len(objects))
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		records = append(records, Record{ID: obj.GUID(), Object: obj})
	}
	return records
}
