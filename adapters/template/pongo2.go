package exporttemplate

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplateExecutor executes a named template with data.
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// Pongo2Executor executes pongo2 templates compiled from a file system.
type Pongo2Executor struct {
	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

var _ TemplateExecutor = (*Pongo2Executor)(nil)

// NewPongo2Executor compiles every *.html file at the root of fsys.
func NewPongo2Executor(fsys fs.FS) (*Pongo2Executor, error) {
	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no templates found")
	}

	executor := &Pongo2Executor{templates: make(map[string]*pongo2.Template, len(names))}
	for _, name := range names {
		source, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		if err := executor.Add(path.Base(name), string(source)); err != nil {
			return nil, err
		}
	}
	return executor, nil
}

// DefaultExecutor compiles the embedded layout templates.
func DefaultExecutor() (*Pongo2Executor, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, err
	}
	return NewPongo2Executor(sub)
}

// Add compiles source and registers it under name, replacing any previous template.
func (e *Pongo2Executor) Add(name, source string) error {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return fmt.Errorf("compile template %s: %w", name, err)
	}
	e.mu.Lock()
	if e.templates == nil {
		e.templates = make(map[string]*pongo2.Template)
	}
	e.templates[name] = tpl
	e.mu.Unlock()
	return nil
}

// Names lists the registered template names.
func (e *Pongo2Executor) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.templates))
	for name := range e.templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ExecuteTemplate renders the named template. Map data is exposed as
// top-level variables; anything else is exposed as "data".
func (e *Pongo2Executor) ExecuteTemplate(w io.Writer, name string, data any) error {
	e.mu.RLock()
	tpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var ctx pongo2.Context
	switch value := data.(type) {
	case pongo2.Context:
		ctx = value
	case map[string]any:
		ctx = pongo2.Context(value)
	default:
		ctx = pongo2.Context{"data": data}
	}
	return tpl.ExecuteWriter(ctx, w)
}
