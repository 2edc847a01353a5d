// internal/form/definition.go
//
// DSR forms subsystem: catalog loader and read-only registry.
//
// Context
//   Every report a district files is one of a fixed set of forms.  The forms,
//   their ordered fields, the unit list, and the control-room upload types
//   are declared once in catalog.yaml, which is embedded in the binary.  At
//   startup main calls Default(), which parses and validates the catalog and
//   returns an immutable *Registry.  Handlers and services receive the same
//   pointer; nothing mutates it after construction, so no lock is needed.
//
// Workflow
//   •  Structs mirror the YAML schema: catalog → FormDef → FieldDef, plus
//      Unit and UploadType lists.
//   •  Parse decodes raw YAML and validates structural rules.
//   •  Registry lookups (Form, Forms, Units, Districts, UploadTypes) never
//      return internal slices that callers could mutate.
//
// Style
//   Comments follow the house guide: full sentences, two spaces after
//   periods, and Oxford commas.  Helper comments use short noun phrases.
//
//------------------------------------------------------------------------------

package form

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// Field types.  Section and Subsection are layout markers only.
const (
	TypeText       = "text"
	TypeTextarea   = "textarea"
	TypeNumber     = "number"
	TypeDate       = "date"
	TypeSection    = "section"
	TypeSubsection = "subsection"
)

var knownTypes = map[string]bool{
	TypeText:       true,
	TypeTextarea:   true,
	TypeNumber:     true,
	TypeDate:       true,
	TypeSection:    true,
	TypeSubsection: true,
}

// FormDef is one report form.  Field order is display order.
type FormDef struct {
	Key     string     `yaml:"key"`     // Stable identifier stored in dsr_entry.form_type.
	Name    string     `yaml:"name"`    // Display title.
	Grouped bool       `yaml:"grouped"` // Render fields under their section headings.
	Fields  []FieldDef `yaml:"fields"`
}

// FieldDef describes one input on a form.
type FieldDef struct {
	Name    string `yaml:"name"`    // Storage key.  Unique per form.
	Type    string `yaml:"type"`    // text, textarea, number, date, section, subsection.
	Label   string `yaml:"label"`   // Human-readable label.
	Section string `yaml:"section"` // Optional owning section name.
	Parent  string `yaml:"parent"`  // Optional owning subsection name.
}

// Layout reports whether the field is a heading rather than an input.
func (f FieldDef) Layout() bool { return f.Type == TypeSection || f.Type == TypeSubsection }

// Unit is a reporting unit.  Special units (the SRP railway units) file
// reports like districts but are not counted as districts.
type Unit struct {
	Name    string `yaml:"name"`
	Special bool   `yaml:"special"`
}

// UploadType is a control-room document category.
type UploadType struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

type catalog struct {
	Forms       []FormDef    `yaml:"forms"`
	Units       []Unit       `yaml:"units"`
	UploadTypes []UploadType `yaml:"upload_types"`
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// Registry is the validated, immutable catalog.
type Registry struct {
	forms       []*FormDef
	byKey       map[string]*FormDef
	units       []Unit
	uploadTypes []UploadType
}

// Default parses the embedded catalog.
func Default() (*Registry, error) { return Parse(catalogYAML) }

// Parse decodes and validates a catalog document.
func Parse(raw []byte) (*Registry, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Forms) == 0 {
		return nil, errors.New("catalog: no forms declared")
	}

	r := &Registry{
		byKey:       make(map[string]*FormDef, len(c.Forms)),
		units:       c.Units,
		uploadTypes: c.UploadTypes,
	}
	for i := range c.Forms {
		fd := &c.Forms[i]
		if err := validateFormDef(fd); err != nil {
			return nil, err
		}
		if _, dup := r.byKey[fd.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate form key '%s'", fd.Key)
		}
		r.byKey[fd.Key] = fd
		r.forms = append(r.forms, fd)
	}

	seen := make(map[string]bool, len(c.Units))
	for _, u := range c.Units {
		if u.Name == "" || seen[u.Name] {
			return nil, fmt.Errorf("catalog: empty or duplicate unit '%s'", u.Name)
		}
		seen[u.Name] = true
	}
	return r, nil
}

// Form returns the definition for key.
func (r *Registry) Form(key string) (*FormDef, bool) {
	fd, ok := r.byKey[key]
	return fd, ok
}

// Forms returns every form in catalog order.
func (r *Registry) Forms() []*FormDef { return slices.Clone(r.forms) }

// FormName resolves a form key to its title, falling back to the key.
func (r *Registry) FormName(key string) string {
	if fd, ok := r.byKey[key]; ok {
		return fd.Name
	}
	return key
}

// Units returns every reporting unit name, special units included.
func (r *Registry) Units() []string {
	out := make([]string, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u.Name)
	}
	return out
}

// Districts returns the unit names that count as districts.
func (r *Registry) Districts() []string {
	out := make([]string, 0, len(r.units))
	for _, u := range r.units {
		if !u.Special {
			out = append(out, u.Name)
		}
	}
	return out
}

// IsUnit reports whether name is a known reporting unit.
func (r *Registry) IsUnit(name string) bool {
	for _, u := range r.units {
		if u.Name == name {
			return true
		}
	}
	return false
}

// UploadTypes returns the control-room upload categories.
func (r *Registry) UploadTypes() []UploadType { return slices.Clone(r.uploadTypes) }

// IsUploadType reports whether key names a known upload category.
func (r *Registry) IsUploadType(key string) bool {
	for _, u := range r.uploadTypes {
		if u.Key == key {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// Posted keys the entry form uses for itself.  A catalog field may not
// reuse one, or its value would never reach the payload.
const (
	EntryDateField = "entry_date"
	EntryIDField   = "entry_id"
	AJAXField      = "ajax_request"
)

// Reserved reports whether name is a posted key owned by the entry form.
func Reserved(name string) bool {
	switch name {
	case EntryDateField, EntryIDField, AJAXField, FieldName:
		return true
	}
	return false
}

// validateFormDef enforces the rules YAML tags cannot express.
func validateFormDef(fd *FormDef) error {
	if fd.Key == "" {
		return errors.New("catalog: form missing required 'key'")
	}
	if fd.Name == "" {
		return fmt.Errorf("form %s: missing 'name'", fd.Key)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form %s: must have 'fields'", fd.Key)
	}

	names := make(map[string]struct{}, len(fd.Fields))
	for _, f := range fd.Fields {
		if f.Name == "" {
			return fmt.Errorf("form %s: field missing 'name'", fd.Key)
		}
		if !knownTypes[f.Type] {
			return fmt.Errorf("form %s: field '%s' has unknown type '%s'", fd.Key, f.Name, f.Type)
		}
		if f.Label == "" && !f.Layout() {
			return fmt.Errorf("form %s: field '%s' missing 'label'", fd.Key, f.Name)
		}
		if Reserved(f.Name) {
			return fmt.Errorf("form %s: field name '%s' is reserved", fd.Key, f.Name)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", fd.Key, f.Name)
		}
		names[f.Name] = struct{}{}
	}
	return nil
}
