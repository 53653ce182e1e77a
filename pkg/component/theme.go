package component

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-viewstack/pkg/view"
)

// WithTheme resolves component templates through a go-theme selector. name
// and variant are the defaults; a view context variant takes precedence over
// variant.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(r *Renderer) {
		if selector == nil {
			return
		}
		r.themes = selector
		r.themeName = strings.TrimSpace(name)
		r.themeVariant = strings.TrimSpace(variant)
	}
}

// templateFor picks the template a descriptor renders for the current
// variant. Theme partials keyed by the descriptor template win, the variant
// override first; then the descriptor's own variants; then the template.
func (r *Renderer) templateFor(v *view.Context, descriptor Descriptor) (string, error) {
	variant := v.Variant()
	if variant == "" {
		variant = r.themeVariant
	}

	if r.themes != nil {
		selection, err := r.themes.Select(r.themeName, variant)
		if err != nil {
			return "", fmt.Errorf("component: %q: select theme %q: %w", descriptor.Name, r.themeName, err)
		}
		if partial, ok := themePartial(selection, descriptor.Template); ok {
			return partial, nil
		}
	}

	if variant != "" {
		if override := strings.TrimSpace(descriptor.Variants[variant]); override != "" {
			return override, nil
		}
	}
	return descriptor.Template, nil
}

func themePartial(selection *theme.Selection, key string) (string, bool) {
	if selection == nil || selection.Manifest == nil {
		return "", false
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		if partial := strings.TrimSpace(variant.Templates[key]); partial != "" {
			return partial, true
		}
	}
	if partial := strings.TrimSpace(selection.Manifest.Templates[key]); partial != "" {
		return partial, true
	}
	return "", false
}
