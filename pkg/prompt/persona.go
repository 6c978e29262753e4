package prompt

import (
	_ "embed"
	"strings"
)

//go:embed persona.tmpl
var defaultPersona string

// PersonaData is the input of a persona template.
type PersonaData struct {
	// FirstInteraction is true when the conversation has no history yet.
	FirstInteraction bool
}

// DefaultPersona returns the built-in persona template.
func DefaultPersona() *Template {
	t, err := Parse("persona.tmpl", defaultPersona, nil)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadPersona loads the persona template at path, or the built-in one
// when path is blank.
func LoadPersona(path string) (*Template, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPersona(), nil
	}
	return Load(path, nil)
}
