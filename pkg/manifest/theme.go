package manifest

import (
	"fmt"
	"maps"

	theme "github.com/goliatone/go-theme"
)

// ThemeSelector exposes the manifest theme as a go-theme selector, nil when
// the manifest declares no theme. An unknown variant selects the base theme.
func (m *Manifest) ThemeSelector() theme.ThemeSelector {
	if m == nil || m.Theme == nil {
		return nil
	}
	return &themeSelector{manifest: m.Theme.themeManifest()}
}

func (t Theme) themeManifest() *theme.Manifest {
	out := &theme.Manifest{
		Name:      t.Name,
		Version:   t.Version,
		Templates: maps.Clone(t.Templates),
	}
	if len(t.Variants) > 0 {
		out.Variants = make(map[string]theme.Variant, len(t.Variants))
		for name, variant := range t.Variants {
			out.Variants[name] = theme.Variant{Templates: maps.Clone(variant.Templates)}
		}
	}
	return out
}

type themeSelector struct {
	manifest *theme.Manifest
}

func (s *themeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name != "" && name != s.manifest.Name {
		return nil, fmt.Errorf("manifest: unknown theme %q", name)
	}
	if _, ok := s.manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: s.manifest.Name, Variant: variant, Manifest: s.manifest}, nil
}
