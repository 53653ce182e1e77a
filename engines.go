package viewstack

import (
	"io/fs"

	"github.com/goliatone/go-viewstack/pkg/render/template"
	"github.com/goliatone/go-viewstack/pkg/render/template/htmltemplate"
	"github.com/goliatone/go-viewstack/pkg/render/template/pongo"
)

// TemplateRegistry aliases template.Registry.
type TemplateRegistry = template.Registry

// DefaultEngines builds a registry with the pongo2 (".tpl") and html/template
// (".html") engines reading templates from fsys.
func DefaultEngines(fsys fs.FS) (*TemplateRegistry, error) {
	pongoEngine, err := pongo.New(pongo.WithFS(fsys))
	if err != nil {
		return nil, err
	}

	var htmlOptions []htmltemplate.Option
	if matches, _ := fs.Glob(fsys, "*.html"); len(matches) > 0 {
		htmlOptions = append(htmlOptions, htmltemplate.WithFS(fsys))
	}
	htmlEngine, err := htmltemplate.New(htmlOptions...)
	if err != nil {
		return nil, err
	}

	engines := template.NewRegistry()
	engines.MustRegister(pongo.Name, pongoEngine)
	engines.MustRegister(htmltemplate.Name, htmlEngine)
	return engines, nil
}
