// Package prompt renders system prompt text from text/template sources.
package prompt

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"text/template"
)

// Template is a parsed prompt template. Templates loaded from disk can be
// reparsed with Reload; inline templates are fixed.
type Template struct {
	name  string
	path  string
	funcs template.FuncMap

	mu     sync.RWMutex
	tmpl   *template.Template
	digest string
}

// Load parses the template file at path.
func Load(path string, funcs template.FuncMap) (*Template, error) {
	if path == "" {
		return nil, errors.New("prompt: template path is empty")
	}
	t := &Template{name: filepath.Base(path), path: path, funcs: funcs}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: read %q: %w", path, err)
	}
	if err := t.parse(data); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse builds a template from inline text.
func Parse(name, text string, funcs template.FuncMap) (*Template, error) {
	t := &Template{name: name, funcs: funcs}
	if err := t.parse([]byte(text)); err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the template with data. Missing map keys are errors.
func (t *Template) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt: execute %q: %w", t.name, err)
	}
	return buf.String(), nil
}

// Reload reparses a file-backed template. The previous version stays
// active when the new content does not parse.
func (t *Template) Reload() error {
	if t.path == "" {
		return nil
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("prompt: read %q: %w", t.path, err)
	}
	return t.parse(data)
}

// Digest is the sha256 of the template source, hex encoded.
func (t *Template) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.digest
}

// Source reports the file the template was loaded from, or its inline name.
func (t *Template) Source() string {
	if t.path != "" {
		return t.path
	}
	return t.name
}

func (t *Template) parse(data []byte) error {
	tmpl := template.New(t.name).Option("missingkey=error")
	if len(t.funcs) > 0 {
		tmpl = tmpl.Funcs(t.funcs)
	}
	if _, err := tmpl.Parse(string(data)); err != nil {
		return fmt.Errorf("prompt: parse %q: %w", t.name, err)
	}
	sum := sha256.Sum256(data)

	t.mu.Lock()
	t.tmpl = tmpl
	t.digest = hex.EncodeToString(sum[:])
	t.mu.Unlock()
	return nil
}
