package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/render/template/htmltemplate"
	"github.com/goliatone/go-viewstack/pkg/render/template/pongo"
	"github.com/goliatone/go-viewstack/pkg/sanitize"
)

// KnownEngines lists the engine names a manifest may reference.
var KnownEngines = []string{pongo.Name, htmltemplate.Name}

// Load reads a manifest from disk. A relative templates directory resolves
// against the manifest's directory.
func Load(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", file, err)
	}
	m, err := Parse(data, file)
	if err != nil {
		return nil, err
	}

	dir := m.Templates
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(file), dir)
	}
	m.Templates = dir
	m.templates = os.DirFS(dir)
	return m, nil
}

// LoadFS reads a manifest from fsys. The templates directory resolves
// against the manifest's directory inside fsys.
func LoadFS(fsys fs.FS, file string) (*Manifest, error) {
	if fsys == nil {
		return nil, fmt.Errorf("manifest: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", file, err)
	}
	m, err := Parse(data, file)
	if err != nil {
		return nil, err
	}

	dir := path.Join(path.Dir(file), m.Templates)
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("manifest: templates %s: %w", dir, err)
	}
	m.Templates = dir
	m.templates = sub
	return m, nil
}

type documentFile struct {
	Encoding   string         `json:"encoding" yaml:"encoding"`
	Templates  string         `json:"templates" yaml:"templates"`
	Globals    map[string]any `json:"globals" yaml:"globals"`
	Locals     map[string]any `json:"locals" yaml:"locals"`
	Theme      *Theme         `json:"theme" yaml:"theme"`
	Components []Component    `json:"components" yaml:"components"`
}

// Parse decodes and validates manifest data. JSON is tried first, then
// YAML. source only labels errors.
func Parse(data []byte, source string) (*Manifest, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Source:     source,
		Encoding:   buffer.NormalizeEncoding(doc.Encoding),
		Templates:  strings.TrimSpace(doc.Templates),
		Globals:    maps.Clone(doc.Globals),
		Locals:     maps.Clone(doc.Locals),
		Components: make([]Component, 0, len(doc.Components)),
	}
	if doc.Theme != nil {
		t, err := normaliseTheme(*doc.Theme, source)
		if err != nil {
			return nil, err
		}
		m.Theme = &t
	}

	seen := make(map[string]struct{}, len(doc.Components))
	for idx, raw := range doc.Components {
		entry, err := normaliseComponent(raw, idx, source)
		if err != nil {
			return nil, err
		}
		if _, exists := seen[entry.Name]; exists {
			return nil, fmt.Errorf("manifest: duplicate component %q (file %s)", entry.Name, source)
		}
		seen[entry.Name] = struct{}{}
		m.Components = append(m.Components, entry)
	}
	return m, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("manifest: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("manifest: parse %s: invalid JSON or YAML", source)
}

func normaliseComponent(raw Component, idx int, source string) (Component, error) {
	out := raw
	out.Name = strings.ToLower(strings.TrimSpace(raw.Name))
	out.Engine = strings.ToLower(strings.TrimSpace(raw.Engine))
	out.Template = strings.TrimSpace(raw.Template)
	out.Sanitize = strings.ToLower(strings.TrimSpace(raw.Sanitize))
	out.Defaults = maps.Clone(raw.Defaults)
	out.Variants = maps.Clone(raw.Variants)

	if out.Name == "" {
		return Component{}, fmt.Errorf("manifest: file %s component at index %d has no name", source, idx)
	}
	if !slices.Contains(KnownEngines, out.Engine) {
		return Component{}, fmt.Errorf("manifest: component %q (file %s) uses unknown engine %q", out.Name, source, raw.Engine)
	}
	hasTemplate := out.Template != ""
	hasInline := strings.TrimSpace(out.Inline) != ""
	if hasTemplate == hasInline {
		return Component{}, fmt.Errorf("manifest: component %q (file %s) needs exactly one of template or inline", out.Name, source)
	}
	if len(out.Variants) > 0 && !hasTemplate {
		return Component{}, fmt.Errorf("manifest: component %q (file %s) declares variants without a template", out.Name, source)
	}
	if !sanitize.Valid(out.Sanitize) {
		return Component{}, fmt.Errorf("manifest: component %q (file %s) uses unknown sanitize policy %q", out.Name, source, raw.Sanitize)
	}
	return out, nil
}

func normaliseTheme(raw Theme, source string) (Theme, error) {
	out := Theme{
		Name:      strings.TrimSpace(raw.Name),
		Version:   strings.TrimSpace(raw.Version),
		Variant:   strings.TrimSpace(raw.Variant),
		Templates: maps.Clone(raw.Templates),
	}
	if out.Name == "" {
		return Theme{}, fmt.Errorf("manifest: theme (file %s) has no name", source)
	}
	if len(raw.Variants) > 0 {
		out.Variants = make(map[string]ThemeVariant, len(raw.Variants))
		for name, variant := range raw.Variants {
			name = strings.TrimSpace(name)
			if name == "" {
				return Theme{}, fmt.Errorf("manifest: theme %q (file %s) has an unnamed variant", out.Name, source)
			}
			out.Variants[name] = ThemeVariant{Templates: maps.Clone(variant.Templates)}
		}
	}
	if out.Variant != "" {
		if _, ok := out.Variants[out.Variant]; !ok {
			return Theme{}, fmt.Errorf("manifest: theme %q (file %s) defaults to unknown variant %q", out.Name, source, out.Variant)
		}
	}
	return out, nil
}
