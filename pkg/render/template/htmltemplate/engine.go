package htmltemplate

import (
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/goliatone/go-viewstack/pkg/render/template"
)

// Name is the engine name components use to select this adapter.
const Name = "html"

const inlineName = "__inline__"

// Option configures the html/template adapter before construction.
type Option func(*config)

type config struct {
	files       fs.FS
	patterns    []string
	extension   string
	funcs       htmltemplate.FuncMap
	helperNames []string
}

// WithFS parses every file in files matching patterns ("*.html" by default).
func WithFS(files fs.FS, patterns ...string) Option {
	return func(cfg *config) {
		cfg.files = files
		if len(patterns) > 0 {
			cfg.patterns = append([]string(nil), patterns...)
		}
	}
}

// WithExtension sets the suffix tried when a template name is not found as
// given.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithFuncs registers static template functions.
func WithFuncs(funcs htmltemplate.FuncMap) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.funcs == nil {
			cfg.funcs = make(htmltemplate.FuncMap, len(funcs))
		}
		for name, fn := range funcs {
			cfg.funcs[name] = fn
		}
	}
}

// WithHelperNames declares helper names templates may call. html/template
// resolves functions at parse time, so every per-evaluation helper needs a
// placeholder. "render" and "capture" are always declared.
func WithHelperNames(names ...string) Option {
	return func(cfg *config) {
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				cfg.helperNames = append(cfg.helperNames, trimmed)
			}
		}
	}
}

// Engine evaluates html/template templates into the writer it is handed.
// Each evaluation runs on a clone of the parsed set with that evaluation's
// helpers bound, so nested renders can re-enter the engine.
type Engine struct {
	mu sync.RWMutex

	base        *htmltemplate.Template
	extension   string
	helperNames []string
}

var _ template.StringEvaluator = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		patterns:    []string{"*.html"},
		extension:   ".html",
		helperNames: []string{"render", "capture"},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	placeholders := make(htmltemplate.FuncMap, len(cfg.helperNames))
	for _, name := range cfg.helperNames {
		placeholders[name] = unboundHelper(name)
	}

	base := htmltemplate.New("viewstack").Funcs(placeholders)
	if len(cfg.funcs) > 0 {
		base = base.Funcs(cfg.funcs)
	}
	if cfg.files != nil {
		parsed, err := base.ParseFS(cfg.files, cfg.patterns...)
		if err != nil {
			return nil, fmt.Errorf("htmltemplate: parse templates: %w", err)
		}
		base = parsed
	}

	return &Engine{
		base:        base,
		extension:   cfg.extension,
		helperNames: cfg.helperNames,
	}, nil
}

// Parse adds a named template from source.
func (e *Engine) Parse(name, source string) error {
	if e == nil || e.base == nil {
		return errors.New("htmltemplate: engine is nil")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("htmltemplate: template name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.base.New(name).Parse(source); err != nil {
		return fmt.Errorf("htmltemplate: parse %q: %w", name, err)
	}
	return nil
}

// Evaluate executes the named template into w.
func (e *Engine) Evaluate(w io.Writer, name string, data any, helpers template.Helpers) error {
	clone, helperErr, err := e.prepare(helpers)
	if err != nil {
		return err
	}

	target := name
	if clone.Lookup(target) == nil && !strings.HasSuffix(target, e.extension) {
		target += e.extension
	}
	if clone.Lookup(target) == nil {
		return fmt.Errorf("htmltemplate: template %q not found", name)
	}

	if err := clone.ExecuteTemplate(w, target, data); err != nil {
		if cause := helperErr(); cause != nil {
			return cause
		}
		return fmt.Errorf("htmltemplate: execute %q: %w", target, err)
	}
	return nil
}

// EvaluateString parses source against the engine's templates and executes it
// into w.
func (e *Engine) EvaluateString(w io.Writer, source string, data any, helpers template.Helpers) error {
	clone, helperErr, err := e.prepare(helpers)
	if err != nil {
		return err
	}

	inline, err := clone.New(inlineName).Parse(source)
	if err != nil {
		return fmt.Errorf("htmltemplate: parse template string: %w", err)
	}
	if err := inline.Execute(w, data); err != nil {
		if cause := helperErr(); cause != nil {
			return cause
		}
		return fmt.Errorf("htmltemplate: execute template string: %w", err)
	}
	return nil
}

func (e *Engine) prepare(helpers template.Helpers) (*htmltemplate.Template, func() error, error) {
	if e == nil || e.base == nil {
		return nil, nil, errors.New("htmltemplate: engine is nil")
	}

	e.mu.RLock()
	clone, err := e.base.Clone()
	e.mu.RUnlock()
	if err != nil {
		return nil, nil, fmt.Errorf("htmltemplate: clone templates: %w", err)
	}

	trapped, helperErr := template.Trap(helpers)
	if len(trapped) > 0 {
		funcs := make(htmltemplate.FuncMap, len(trapped))
		for name, fn := range trapped {
			funcs[name] = markupHelper(fn)
		}
		clone.Funcs(funcs)
	}
	return clone, helperErr, nil
}

func markupHelper(fn template.Helper) func(args ...any) (htmltemplate.HTML, error) {
	return func(args ...any) (htmltemplate.HTML, error) {
		out, err := fn(args...)
		if err != nil {
			return "", err
		}
		return htmltemplate.HTML(out), nil
	}
}

func unboundHelper(name string) func(args ...any) (htmltemplate.HTML, error) {
	return func(...any) (htmltemplate.HTML, error) {
		return "", fmt.Errorf("htmltemplate: helper %q is not bound for this evaluation", name)
	}
}
