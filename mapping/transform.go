package mapping

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTransform is returned when a definition references a transform
// name that was never registered.
var ErrUnknownTransform = errors.New("unknown transform")

// Registry holds named transforms available to YAML-declared tables.
type Registry struct {
	transforms map[string]Transform
}

// NewRegistry creates a new empty transform registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]Transform)}
}

// Register adds a transform under a name. Registering the same name twice or
// a nil transform is an error.
func (r *Registry) Register(name string, fn Transform) error {
	if name == "" {
		return errors.New("transform name must not be empty")
	}

	if fn == nil {
		return fmt.Errorf("transform %q: nil function", name)
	}

	if _, exists := r.transforms[name]; exists {
		return fmt.Errorf("duplicate transform %q", name)
	}

	r.transforms[name] = fn

	return nil
}

// MustRegister is Register that panics on error, for registries populated in
// initialization code.
func (r *Registry) MustRegister(name string, fn Transform) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get returns a transform by name, or nil if not found.
func (r *Registry) Get(name string) Transform {
	return r.transforms[name]
}

// Has returns true if a transform with the given name exists.
func (r *Registry) Has(name string) bool {
	_, exists := r.transforms[name]
	return exists
}

// Names returns all transform names, sorted for determinism.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
