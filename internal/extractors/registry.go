package extractors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// BuilderFunc creates an Extractor from generic config.
// Config is a map of extractor-specific settings parsed from user config.
type BuilderFunc func(cfg map[string]any) (driven.Extractor, error)

// Registry maps extractor names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds an extractor builder to the registry.
// Name should be unique and match the extractor's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates an extractor by name with the given config.
func (r *Registry) Build(name string, cfg map[string]any) (driven.Extractor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: extractor %s", domain.ErrUnsupportedType, name)
	}
	return builder(cfg)
}

// Has returns true if an extractor with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered extractor names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
