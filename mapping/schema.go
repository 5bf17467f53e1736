package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefinitionFile represents the root of a YAML definition file.
// This is the authoritative, human-reviewed declaration of shapes and
// correspondence tables.
type DefinitionFile struct {
	// Version of the definition schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Shapes declares named structural types.
	Shapes []ShapeDef `yaml:"shapes,omitempty"`

	// Tables declares named correspondence tables.
	Tables []TableDef `yaml:"tables"`
}

// ShapeDef declares one shape.
type ShapeDef struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef declares one field of a shape. Exactly one of Kind or Shape must
// be set: Kind names a primitive kind, Shape references another declared
// shape by name.
type FieldDef struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind,omitempty"`
	Shape    string `yaml:"shape,omitempty"`
	Required bool   `yaml:"required,omitempty"`
}

// TableDef declares one correspondence table.
type TableDef struct {
	Name   string     `yaml:"name"`
	Fields []EntryDef `yaml:"fields"`
}

// EntryDef declares one correspondence.
//
// Forms:
//   - target + source: plain field copy
//   - target + source + transform: transformed copy
//   - target + constant: fixed value, no source dependency
//   - target + transform: computed value, no source dependency
type EntryDef struct {
	Target    string `yaml:"target"`
	Source    string `yaml:"source,omitempty"`
	Transform string `yaml:"transform,omitempty"`
	Constant  any    `yaml:"constant,omitempty"`

	// hasConstant distinguishes `constant: null` from an absent key.
	hasConstant bool
}

// UnmarshalYAML implements custom YAML unmarshaling for EntryDef, keeping
// track of whether the constant key was present so an explicit null constant
// is honored.
func (e *EntryDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping entry, got %v", node.Kind)
	}

	var raw struct {
		Target    string `yaml:"target"`
		Source    string `yaml:"source"`
		Transform string `yaml:"transform"`
		Constant  any    `yaml:"constant"`
	}

	if err := node.Decode(&raw); err != nil {
		return err
	}

	e.Target = raw.Target
	e.Source = raw.Source
	e.Transform = raw.Transform
	e.Constant = raw.Constant

	// mapping node content alternates key, value
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "constant" {
			e.hasConstant = true
			break
		}
	}

	return nil
}

// MarshalYAML implements custom YAML marshaling for EntryDef, emitting only
// the keys the entry form uses.
func (e EntryDef) MarshalYAML() (any, error) {
	out := map[string]any{"target": e.Target}
	if e.Source != "" {
		out["source"] = e.Source
	}

	if e.Transform != "" {
		out["transform"] = e.Transform
	}

	if e.hasConstant {
		out["constant"] = e.Constant
	}

	return out, nil
}

// HasConstant reports whether the entry declared a constant value
// (including an explicit null).
func (e EntryDef) HasConstant() bool {
	return e.hasConstant
}
