package mail

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates renders the embedded HTML email and error pages. Placeholders
// use the {{key}} form and are substituted verbatim from the data map.
type Templates struct {
	loaded map[string]string
}

// NewTemplates loads every embedded template eagerly so a missing file
// fails at startup rather than mid-request.
func NewTemplates() (*Templates, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	loaded := make(map[string]string, len(entries))
	for _, e := range entries {
		raw, err := templateFS.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".html")
		loaded[name] = string(raw)
	}
	return &Templates{loaded: loaded}, nil
}

func (t *Templates) Render(name string, data map[string]string) (string, error) {
	tpl, ok := t.loaded[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	for key, value := range data {
		tpl = strings.ReplaceAll(tpl, "{{"+key+"}}", value)
	}
	return tpl, nil
}
