package filter

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Presets holds named filters, typically loaded from configuration
type Presets struct {
	compiler *Compiler
	filters  map[string]*Filter
	mu       sync.RWMutex
}

// NewPresets creates an empty registry. A nil compiler uses the shared one.
func NewPresets(compiler *Compiler) *Presets {
	if compiler == nil {
		compiler = defaultCompiler
	}
	return &Presets{
		compiler: compiler,
		filters:  make(map[string]*Filter),
	}
}

// Register compiles expression and stores it under name, replacing any
// previous filter with that name
func (p *Presets) Register(name, expression string) error {
	f, err := p.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile preset '%s': %w", name, err)
	}

	p.mu.Lock()
	p.filters[name] = f
	p.mu.Unlock()
	return nil
}

// RegisterAll registers every preset, or none if any fails to compile
func (p *Presets) RegisterAll(presets map[string]string) error {
	compiled := make(map[string]*Filter, len(presets))
	for _, name := range slices.Sorted(maps.Keys(presets)) {
		f, err := p.compiler.Compile(presets[name])
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = f
	}

	p.mu.Lock()
	maps.Copy(p.filters, compiled)
	p.mu.Unlock()
	return nil
}

// Get returns the filter registered under name
func (p *Presets) Get(name string) (*Filter, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.filters[name]
	return f, ok
}

// Lookup is Get with an error for unknown names
func (p *Presets) Lookup(name string) (*Filter, error) {
	f, ok := p.Get(name)
	if !ok {
		return nil, fmt.Errorf("filter preset '%s' not found", name)
	}
	return f, nil
}

// Names returns the registered names in sorted order
func (p *Presets) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.filters))
}
