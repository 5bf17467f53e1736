package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"shape-mapper/primitive"
	"shape-mapper/shape"
)

// Definitions is the resolved form of a definition file: built descriptors
// and tables, ready for checking and execution.
type Definitions struct {
	shapes map[string]*shape.Descriptor
	tables map[string]*Table
}

// Shape returns a declared shape by name.
func (d *Definitions) Shape(name string) (*shape.Descriptor, bool) {
	s, ok := d.shapes[name]
	return s, ok
}

// Table returns a declared table by name.
func (d *Definitions) Table(name string) (*Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// LoadFile loads, parses, and resolves a YAML definition file. Transforms
// referenced by name are looked up in the registry; a nil registry is
// treated as empty.
func LoadFile(path string, reg *Registry) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %s: %w", path, err)
	}

	return Parse(data, reg)
}

// Parse parses YAML data and resolves it into built shapes and tables.
// Definition errors (duplicate fields, unknown kinds, unknown shape or
// transform references, cyclic shapes) fail fast here, never deferred into
// diagnostics.
func Parse(data []byte, reg *Registry) (*Definitions, error) {
	var df DefinitionFile

	err := yaml.Unmarshal(data, &df)
	if err != nil {
		return nil, fmt.Errorf("failed to parse definition YAML: %w", err)
	}

	applyDefaults(&df)

	return Resolve(&df, reg)
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(df *DefinitionFile) {
	if df.Version == "" {
		df.Version = "1"
	}
}

// Marshal serializes a DefinitionFile to YAML.
func Marshal(df *DefinitionFile) ([]byte, error) {
	return yaml.Marshal(df)
}

// Resolve builds descriptors and tables from a parsed definition file.
func Resolve(df *DefinitionFile, reg *Registry) (*Definitions, error) {
	if reg == nil {
		reg = NewRegistry()
	}

	defs := &Definitions{
		shapes: make(map[string]*shape.Descriptor, len(df.Shapes)),
		tables: make(map[string]*Table, len(df.Tables)),
	}

	if err := resolveShapes(df.Shapes, defs.shapes); err != nil {
		return nil, err
	}

	for i := range df.Tables {
		td := &df.Tables[i]
		if td.Name == "" {
			return nil, fmt.Errorf("table %d: missing name", i)
		}

		if _, exists := defs.tables[td.Name]; exists {
			return nil, fmt.Errorf("duplicate table %q", td.Name)
		}

		tbl, err := resolveTable(td, reg)
		if err != nil {
			return nil, err
		}

		defs.tables[td.Name] = tbl
	}

	return defs, nil
}

// resolveShapes builds declared shapes, resolving references between them.
// Declaration order does not matter; reference cycles are rejected.
func resolveShapes(shapeDefs []ShapeDef, out map[string]*shape.Descriptor) error {
	byName := make(map[string]*ShapeDef, len(shapeDefs))

	for i := range shapeDefs {
		sd := &shapeDefs[i]
		if sd.Name == "" {
			return fmt.Errorf("shape %d: missing name", i)
		}

		if _, exists := byName[sd.Name]; exists {
			return fmt.Errorf("duplicate shape %q", sd.Name)
		}

		byName[sd.Name] = sd
	}

	for name := range byName {
		if _, err := buildShape(name, byName, out, map[string]struct{}{}); err != nil {
			return err
		}
	}

	return nil
}

func buildShape(
	name string,
	byName map[string]*ShapeDef,
	built map[string]*shape.Descriptor,
	onPath map[string]struct{},
) (*shape.Descriptor, error) {
	if d, ok := built[name]; ok {
		return d, nil
	}

	if _, ok := onPath[name]; ok {
		return nil, fmt.Errorf("shape %q: %w", name, shape.ErrCyclicShape)
	}

	sd, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("shape %q not found", name)
	}

	onPath[name] = struct{}{}
	defer delete(onPath, name)

	fields := make([]shape.FieldSpec, 0, len(sd.Fields))

	for _, fd := range sd.Fields {
		spec := shape.FieldSpec{Name: fd.Name, Required: fd.Required}

		switch {
		case fd.Shape != "" && fd.Kind != "" && fd.Kind != "shape":
			return nil, fmt.Errorf("shape %q field %q: kind and shape are mutually exclusive", name, fd.Name)

		case fd.Shape != "":
			nested, err := buildShape(fd.Shape, byName, built, onPath)
			if err != nil {
				return nil, err
			}

			spec.Kind = shape.RefOf(nested)

		default:
			k := primitive.ParseKind(fd.Kind)
			if !k.IsValid() || k == primitive.KindShape {
				return nil, fmt.Errorf("shape %q field %q: unknown kind %q", name, fd.Name, fd.Kind)
			}

			spec.Kind = shape.KindOf(k)
		}

		fields = append(fields, spec)
	}

	d, err := shape.Build(name, fields)
	if err != nil {
		return nil, err
	}

	built[name] = d

	return d, nil
}

func resolveTable(td *TableDef, reg *Registry) (*Table, error) {
	b := NewBuilder(td.Name)

	for _, ed := range td.Fields {
		if ed.Target == "" {
			return nil, fmt.Errorf("table %q: entry missing target", td.Name)
		}

		var fn Transform
		if ed.Transform != "" {
			fn = reg.Get(ed.Transform)
			if fn == nil {
				return nil, fmt.Errorf("table %q field %q: %w %q (registered: %v)",
					td.Name, ed.Target, ErrUnknownTransform, ed.Transform, reg.Names())
			}
		}

		switch {
		case ed.HasConstant() && (ed.Source != "" || ed.Transform != ""):
			return nil, fmt.Errorf("table %q field %q: constant excludes source and transform",
				td.Name, ed.Target)

		case ed.HasConstant():
			b.MapConstant(ed.Target, ed.Constant)

		case ed.Source != "" && fn != nil:
			b.MapTransform(ed.Target, ed.Source, fn)

		case ed.Source != "":
			b.Map(ed.Target, ed.Source)

		case fn != nil:
			b.MapComputed(ed.Target, fn)

		default:
			return nil, fmt.Errorf("table %q field %q: needs a source, constant, or transform",
				td.Name, ed.Target)
		}
	}

	return b.Build()
}
