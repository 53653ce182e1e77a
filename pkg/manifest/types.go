package manifest

import "io/fs"

// Manifest describes a set of components and where their templates live.
type Manifest struct {
	// Source is the path the manifest was read from.
	Source    string
	Encoding  string
	Templates string
	Globals   map[string]any
	// Locals are shared by every component rendered from this manifest.
	Locals     map[string]any
	Theme      *Theme
	Components []Component

	templates fs.FS
}

// Component is one manifest entry. It maps onto component.Descriptor.
type Component struct {
	Name      string            `json:"name" yaml:"name"`
	Engine    string            `json:"engine" yaml:"engine"`
	Template  string            `json:"template" yaml:"template"`
	Variants  map[string]string `json:"variants" yaml:"variants"`
	Inline    string            `json:"inline" yaml:"inline"`
	Postamble string            `json:"postamble" yaml:"postamble"`
	Sanitize  string            `json:"sanitize" yaml:"sanitize"`
	Defaults  map[string]any    `json:"defaults" yaml:"defaults"`
}

// Theme maps component templates to themed partials. Variant is the default
// variant when a render does not pick one.
type Theme struct {
	Name      string                  `json:"name" yaml:"name"`
	Version   string                  `json:"version" yaml:"version"`
	Variant   string                  `json:"variant" yaml:"variant"`
	Templates map[string]string       `json:"templates" yaml:"templates"`
	Variants  map[string]ThemeVariant `json:"variants" yaml:"variants"`
}

// ThemeVariant overrides theme templates for one variant.
type ThemeVariant struct {
	Templates map[string]string `json:"templates" yaml:"templates"`
}

// TemplatesFS returns the filesystem templates are loaded from, nil when the
// manifest was parsed from bytes without a base.
func (m *Manifest) TemplatesFS() fs.FS {
	if m == nil {
		return nil
	}
	return m.templates
}
