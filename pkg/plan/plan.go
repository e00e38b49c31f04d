// Package plan reads batch import plans written in YAML or JSON.
package plan

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tsedit/pkg/imports"
)

// ErrInvalidPlan is returned when a plan does not match the plan schema.
var ErrInvalidPlan = errors.New("invalid plan")

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Plan lists the imports to add and the globs selecting the files to add
// them to.
type Plan struct {
	Files   []string          `json:"files,omitempty"   yaml:"files,omitempty"`
	Exclude []string          `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Imports []imports.Request `json:"imports"           yaml:"imports"`
}

// Schema returns the JSON schema plans are validated against.
func Schema() []byte {
	return schemaJSON
}

// Parse decodes and validates a plan. JSON input is accepted as YAML.
func Parse(data []byte) (*Plan, error) {
	var doc any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate plan: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(msgs, "; "))
	}

	var p Plan

	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	if err := p.validatePatterns(); err != nil {
		return nil, err
	}

	return &p, nil
}

// LoadFile reads and parses the plan at path.
func LoadFile(fs afero.Fs, path string) (*Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// Requests returns the plan's imports in order.
func (p *Plan) Requests() []imports.Request {
	return append([]imports.Request(nil), p.Imports...)
}

// IncludePatterns returns the plan's file globs, or defaults when it names none.
func (p *Plan) IncludePatterns(defaults []string) []string {
	if len(p.Files) == 0 {
		return defaults
	}

	return p.Files
}

// ExcludePatterns returns defaults followed by the plan's exclude globs.
func (p *Plan) ExcludePatterns(defaults []string) []string {
	return append(append([]string(nil), defaults...), p.Exclude...)
}

func (p *Plan) validatePatterns() error {
	for _, pattern := range append(append([]string(nil), p.Files...), p.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: bad glob %q", ErrInvalidPlan, pattern)
		}
	}

	return nil
}
