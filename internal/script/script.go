// Package script loads dialogue scripts and derives the per-line context rows
// and speaker codes used for training.
package script

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"dialogvec/internal/domain"
)

var validate = validator.New()

// Script is an ordered list of scenes, as stored on disk.
type Script struct {
	Title  string         `yaml:"title"`
	Scenes []domain.Scene `yaml:"scenes" validate:"required,dive,dive"`
}

// Load reads a YAML (or JSON) script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a script document.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return &s, nil
}

// Lines returns every line of the script in order.
func (s *Script) Lines() []domain.Line {
	var out []domain.Line
	for _, scene := range s.Scenes {
		out = append(out, scene...)
	}
	return out
}
