// Package confkit holds the small pieces shared by every config loader in
// the repository: path resolution relative to the main config file,
// side-loaded section files and one-shot .env loading.
package confkit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
)

// ErrSectionMissing is returned by Hydrate when a required section has no file.
var ErrSectionMissing = errors.New("confkit: section file not configured")

// ResolvePath expands environment variables in file and anchors relative
// results at base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(strings.TrimSpace(file))
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory sections of mainPath are resolved against.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}

// LoadFile reads a go-zero style config file into a fresh T.
func LoadFile[T any](path string, useEnv bool) (*T, error) {
	var cfg T
	var opts []conf.Option
	if useEnv {
		opts = append(opts, conf.UseEnv())
	}
	if err := conf.Load(path, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Section points at a sibling config file owned by another package. The
// main file only records File; Value is filled by Hydrate.
type Section[T any] struct {
	File     string `json:",optional"`
	Required bool   `json:",optional"`
	Value    *T     `json:"-"`
}

// Loaded reports whether Hydrate produced a value.
func (s Section[T]) Loaded() bool {
	return s.Value != nil
}

// Hydrate runs loader on the resolved File and keeps the result. An empty
// File is a no-op unless the section is Required.
func (s *Section[T]) Hydrate(name, base string, loader func(string) (*T, error)) error {
	if strings.TrimSpace(s.File) == "" {
		if s.Required {
			return fmt.Errorf("%s: %w", name, ErrSectionMissing)
		}
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return fmt.Errorf("%s section: %w", name, err)
	}
	s.File, s.Value = p, v
	return nil
}

// ValueOr returns the hydrated value, or the result of fallback when the
// section was not configured.
func (s Section[T]) ValueOr(fallback func() *T) *T {
	if s.Value != nil || fallback == nil {
		return s.Value
	}
	return fallback()
}
