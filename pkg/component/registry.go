package component

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-viewstack/pkg/sanitize"
)

// RenderFunc is a compiled template: it writes straight into the host buffer
// through the Scope instead of receiving a writer.
type RenderFunc func(s *Scope, data any) error

// Descriptor describes how to render one component. Exactly one of Func,
// Template, or Inline is set.
type Descriptor struct {
	Name string
	// Engine names the template engine for Template and Inline.
	Engine   string
	Template string
	// Variants maps a variant name to the template rendered in its place.
	Variants map[string]string
	Inline   string
	Func     RenderFunc
	// Postamble is appended once to the finished output of every render.
	Postamble string
	// Sanitize names a bluemonday policy applied to the finished output.
	Sanitize string
	// Defaults fill keys missing from map data.
	Defaults map[string]any
}

// Registry tracks component descriptors keyed by name. Callers can register new
// components or override existing ones.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
	}
}

// Clone returns a deep copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with the provided name. Existing entries are
// replaced.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("component: component name is required")
	}
	if err := validate(name, descriptor); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	r.components[name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying registry
// setup.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Names returns a sorted slice of registered component names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func validate(name string, descriptor Descriptor) error {
	sources := 0
	if descriptor.Func != nil {
		sources++
	}
	if strings.TrimSpace(descriptor.Template) != "" {
		sources++
	}
	if strings.TrimSpace(descriptor.Inline) != "" {
		sources++
	}
	switch {
	case sources == 0:
		return fmt.Errorf("component: %q needs a template, inline source, or func", name)
	case sources > 1:
		return fmt.Errorf("component: %q sets more than one of template, inline, and func", name)
	}
	if len(descriptor.Variants) > 0 && strings.TrimSpace(descriptor.Template) == "" {
		return fmt.Errorf("component: %q declares variants without a template", name)
	}
	if descriptor.Func == nil && strings.TrimSpace(descriptor.Engine) == "" {
		return fmt.Errorf("component: %q needs an engine", name)
	}
	if !sanitize.Valid(descriptor.Sanitize) {
		return fmt.Errorf("component: %q uses unknown sanitize policy %q", name, descriptor.Sanitize)
	}
	return nil
}

func cloneDescriptor(src Descriptor) Descriptor {
	clone := src
	if src.Defaults != nil {
		clone.Defaults = maps.Clone(src.Defaults)
	}
	if src.Variants != nil {
		clone.Variants = maps.Clone(src.Variants)
	}
	return clone
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
