package template

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores evaluators by engine name, providing discovery and
// duplication safeguards.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Evaluator
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Evaluator),
	}
}

// Register adds an evaluator under name. Duplicate names return an error.
func (r *Registry) Register(name string, engine Evaluator) error {
	if engine == nil {
		return fmt.Errorf("template: engine is required")
	}
	name = normalize(name)
	if name == "" {
		return fmt.Errorf("template: engine name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[name]; exists {
		return fmt.Errorf("template: engine %q already registered", name)
	}

	r.engines[name] = engine
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, engine Evaluator) {
	if err := r.Register(name, engine); err != nil {
		panic(err)
	}
}

// Get retrieves an evaluator by name.
func (r *Registry) Get(name string) (Evaluator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.engines[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("template: engine %q not found", name)
	}
	return engine, nil
}

// List returns a sorted list of engine names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an engine is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.engines[normalize(name)]
	return ok
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
