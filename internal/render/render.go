// Package render is the template engine used by mcpkit strategies to produce
// new project files. It wraps text/template with a parse cache and a funcMap
// of naming helpers for TypeScript code generation.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"
	"unicode"
)

// Renderer handles template parsing and rendering with caching.
// The cache is owned by the renderer instance, constructed per process,
// and can be invalidated explicitly in tests via ClearCache.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// New creates a renderer with built-in helper functions.
func New() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderString renders a template from a string.
// The name is used for caching and error messages.
func (r *Renderer) RenderString(name, templateStr string, data any) ([]byte, error) {
	return r.render("string", name, func() (string, error) {
		return templateStr, nil
	}, data)
}

// RenderFS renders a template from an embedded filesystem.
func (r *Renderer) RenderFS(fsys embed.FS, path string, data any) ([]byte, error) {
	return r.render("fs", path, func() (string, error) {
		b, err := fsys.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading template from fs '%s': %w", path, err)
		}
		return string(b), nil
	}, data)
}

// RenderFile renders a template from a file path (for --template overrides).
func (r *Renderer) RenderFile(path string, data any) ([]byte, error) {
	return r.render("file", path, func() (string, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading template file '%s': %w", path, err)
		}
		return string(b), nil
	}, data)
}

// ClearCache clears the template cache.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}

func (r *Renderer) render(kind, name string, load func() (string, error), data any) ([]byte, error) {
	cacheKey := kind + ":" + name

	r.mu.RLock()
	tmpl, ok := r.cache[cacheKey]
	r.mu.RUnlock()

	if !ok {
		src, err := load()
		if err != nil {
			return nil, err
		}
		tmpl, err = template.New(name).Funcs(r.funcMap).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing template '%s': %w", name, err)
		}
		r.mu.Lock()
		r.cache[cacheKey] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template '%s': %w", name, err)
	}
	return buf.Bytes(), nil
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		// Case conversion
		"pascalCase": PascalCase, // search_docs → SearchDocs
		"camelCase":  CamelCase,  // search_docs → searchDocs
		"snakeCase":  SnakeCase,  // SearchDocs → search_docs
		"kebabCase":  KebabCase,  // SearchDocs → search-docs
		"constCase":  ConstCase,  // myCache → MY_CACHE

		// String manipulation
		"quote":     Quote,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"replace":   strings.ReplaceAll,

		// Utilities
		"default": Default,
	}
}

// PascalCase converts snake_case, kebab-case or camelCase to PascalCase.
// Examples: search_docs → SearchDocs, my-tool → MyTool, apiKey → ApiKey
func PascalCase(s string) string {
	if s == "" {
		return ""
	}

	parts := splitWords(s)
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(string(part[0])) + part[1:]
		}
	}
	return strings.Join(parts, "")
}

// CamelCase converts snake_case, kebab-case or PascalCase to camelCase.
func CamelCase(s string) string {
	p := PascalCase(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(string(p[0])) + p[1:]
}

// SnakeCase converts PascalCase, camelCase or kebab-case to snake_case.
// Examples: SearchDocs → search_docs, HTTPServer → http_server
func SnakeCase(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "_-") {
		return strings.ToLower(strings.ReplaceAll(s, "-", "_"))
	}

	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) {
					result.WriteRune('_')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// KebabCase converts any supported case to kebab-case.
// Example: SearchDocs → search-docs
func KebabCase(s string) string {
	return strings.ReplaceAll(SnakeCase(s), "_", "-")
}

// ConstCase converts any supported case to SCREAMING_SNAKE_CASE, the
// convention for binding names. Example: myCache → MY_CACHE
func ConstCase(s string) string {
	return strings.ToUpper(SnakeCase(s))
}

// Quote wraps a string in double quotes.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Default returns the default value if the given value is nil or empty.
func Default(defaultVal, val any) any {
	if val == nil {
		return defaultVal
	}
	if s, ok := val.(string); ok && s == "" {
		return defaultVal
	}
	switch v := val.(type) {
	case []any:
		if len(v) == 0 {
			return defaultVal
		}
	case map[string]any:
		if len(v) == 0 {
			return defaultVal
		}
	}
	return val
}

// splitWords splits an identifier on underscores and hyphens.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
}
