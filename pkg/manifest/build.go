package manifest

import (
	"fmt"
	"io/fs"
	"maps"

	"github.com/goliatone/go-viewstack/pkg/component"
	"github.com/goliatone/go-viewstack/pkg/render/template"
	"github.com/goliatone/go-viewstack/pkg/render/template/htmltemplate"
	"github.com/goliatone/go-viewstack/pkg/render/template/pongo"
	"github.com/goliatone/go-viewstack/pkg/view"
)

// Registry builds a component registry from the manifest entries.
func (m *Manifest) Registry() (*component.Registry, error) {
	reg := component.New()
	if m == nil {
		return reg, nil
	}
	for _, entry := range m.Components {
		err := reg.Register(entry.Name, component.Descriptor{
			Engine:    entry.Engine,
			Template:  entry.Template,
			Inline:    entry.Inline,
			Postamble: entry.Postamble,
			Sanitize:  entry.Sanitize,
			Defaults:  entry.Defaults,
			Variants:  entry.Variants,
		})
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
	}
	return reg, nil
}

// Engines builds the pongo2 and html/template engines over the manifest's
// templates. Globals are seeded into the pongo2 set.
func (m *Manifest) Engines() (*template.Registry, error) {
	files := m.TemplatesFS()

	pongoOptions := []pongo.Option{pongo.WithGlobalData(m.globals())}
	if files != nil {
		pongoOptions = append(pongoOptions, pongo.WithFS(files))
	} else {
		pongoOptions = append(pongoOptions, pongo.WithBaseDir("."))
	}
	pongoEngine, err := pongo.New(pongoOptions...)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	var htmlOptions []htmltemplate.Option
	if files != nil {
		// ParseFS fails on patterns that match nothing.
		if matches, _ := fs.Glob(files, "*.html"); len(matches) > 0 {
			htmlOptions = append(htmlOptions, htmltemplate.WithFS(files))
		}
	}
	htmlEngine, err := htmltemplate.New(htmlOptions...)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	engines := template.NewRegistry()
	if err := engines.Register(pongo.Name, pongoEngine); err != nil {
		return nil, err
	}
	if err := engines.Register(htmltemplate.Name, htmlEngine); err != nil {
		return nil, err
	}
	return engines, nil
}

// Renderer wires the manifest's components and engines into a Renderer
// using the manifest encoding, theme and locals. Globals are merged under the
// locals so html/template components see them too. options are applied after
// those.
func (m *Manifest) Renderer(options ...component.Option) (*component.Renderer, error) {
	reg, err := m.Registry()
	if err != nil {
		return nil, err
	}
	engines, err := m.Engines()
	if err != nil {
		return nil, err
	}

	base := []component.Option{component.WithEncoding(m.Encoding)}
	if locals := m.viewLocals(); len(locals) > 0 {
		base = append(base, component.WithViewOptions(view.WithLocals(locals)))
	}
	if m.Theme != nil {
		base = append(base, component.WithTheme(m.ThemeSelector(), m.Theme.Name, m.Theme.Variant))
	}
	return component.NewRenderer(reg, engines, append(base, options...)...), nil
}

// viewLocals overlays Locals on Globals.
func (m *Manifest) viewLocals() map[string]any {
	if m == nil || len(m.Globals)+len(m.Locals) == 0 {
		return nil
	}
	out := maps.Clone(m.Globals)
	if out == nil {
		out = make(map[string]any, len(m.Locals))
	}
	maps.Copy(out, m.Locals)
	return out
}

func (m *Manifest) globals() map[string]any {
	if m == nil {
		return nil
	}
	return m.Globals
}
