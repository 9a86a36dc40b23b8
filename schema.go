package goadn

import (
	"fmt"

	j "github.com/goccy/go-json"
)

// Schema is the raw, uncompiled form of a package document: identity
// metadata plus an ordered sequence of type definitions. It mirrors the
// document wire shape exactly so the metaschema can validate it.
type Schema struct {
	Info  *Information `json:"info,omitempty"`
	Types []TypeDef    `json:"types"`
}

// Information is package identity metadata.
type Information struct {
	Package     string            `json:"package"`
	Version     string            `json:"version,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	License     string            `json:"license,omitempty"`
	Namespaces  map[string]string `json:"namespaces,omitempty"` // prefix -> namespace identifier
	Roots       []string          `json:"roots,omitempty"`
	// Exports is the deprecated spelling of Roots. It is honored on input
	// when Roots is absent and is otherwise ignored.
	Exports []string `json:"exports,omitempty"`
	Config  *Config  `json:"config,omitempty"`
}

// roots returns the declared hierarchy entry points, falling back to the
// deprecated exports field.
func (inf *Information) roots() []string {
	if inf == nil {
		return nil
	}
	if len(inf.Roots) > 0 {
		return inf.Roots
	}
	return inf.Exports
}

// TypeDef is one raw type definition tuple:
// [name, base, [options...], description, [fields...]].
type TypeDef struct {
	Name        string
	Base        string
	Options     []string
	Description string
	Fields      []Field // Choice, Array, Map, Record
	Items       []Item  // Enumerated
}

// Field is one raw field tuple: [id, name, typeRef, [options...], description].
type Field struct {
	ID          int
	Name        string
	TypeRef     string
	Options     []string
	Description string
}

// Item is one raw enumerated item tuple: [id, value, description].
type Item struct {
	ID          int
	Value       string
	Description string
}

// UnmarshalJSON decodes the array-tuple form. Trailing elements may be
// omitted on input; they default to empty.
func (td *TypeDef) UnmarshalJSON(data []byte) error {
	var raw []j.RawMessage
	if err := j.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 || len(raw) > 5 {
		return fmt.Errorf("goadn: type definition must have 2..5 elements, got %d", len(raw))
	}
	*td = TypeDef{}
	if err := j.Unmarshal(raw[0], &td.Name); err != nil {
		return fmt.Errorf("goadn: type name: %w", err)
	}
	if err := j.Unmarshal(raw[1], &td.Base); err != nil {
		return fmt.Errorf("goadn: base type: %w", err)
	}
	if len(raw) > 2 {
		if err := j.Unmarshal(raw[2], &td.Options); err != nil {
			return fmt.Errorf("goadn: type options: %w", err)
		}
	}
	if len(raw) > 3 {
		if err := j.Unmarshal(raw[3], &td.Description); err != nil {
			return fmt.Errorf("goadn: type description: %w", err)
		}
	}
	if len(raw) > 4 {
		if td.Base == "Enumerated" {
			if err := j.Unmarshal(raw[4], &td.Items); err != nil {
				return fmt.Errorf("goadn: enumerated items: %w", err)
			}
		} else {
			if err := j.Unmarshal(raw[4], &td.Fields); err != nil {
				return fmt.Errorf("goadn: fields: %w", err)
			}
		}
	}
	return nil
}

// MarshalJSON always writes the full 5-tuple so canonical output is stable.
func (td TypeDef) MarshalJSON() ([]byte, error) {
	opts := td.Options
	if opts == nil {
		opts = []string{}
	}
	var fields any
	switch {
	case td.Base == "Enumerated":
		items := td.Items
		if items == nil {
			items = []Item{}
		}
		fields = items
	case td.Fields == nil:
		fields = []Field{}
	default:
		fields = td.Fields
	}
	return j.Marshal([]any{td.Name, td.Base, opts, td.Description, fields})
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var raw []j.RawMessage
	if err := j.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 3 || len(raw) > 5 {
		return fmt.Errorf("goadn: field must have 3..5 elements, got %d", len(raw))
	}
	*f = Field{}
	if err := j.Unmarshal(raw[0], &f.ID); err != nil {
		return fmt.Errorf("goadn: field id: %w", err)
	}
	if err := j.Unmarshal(raw[1], &f.Name); err != nil {
		return fmt.Errorf("goadn: field name: %w", err)
	}
	if err := j.Unmarshal(raw[2], &f.TypeRef); err != nil {
		return fmt.Errorf("goadn: field type: %w", err)
	}
	if len(raw) > 3 {
		if err := j.Unmarshal(raw[3], &f.Options); err != nil {
			return fmt.Errorf("goadn: field options: %w", err)
		}
	}
	if len(raw) > 4 {
		if err := j.Unmarshal(raw[4], &f.Description); err != nil {
			return fmt.Errorf("goadn: field description: %w", err)
		}
	}
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	opts := f.Options
	if opts == nil {
		opts = []string{}
	}
	return j.Marshal([]any{f.ID, f.Name, f.TypeRef, opts, f.Description})
}

func (it *Item) UnmarshalJSON(data []byte) error {
	var raw []j.RawMessage
	if err := j.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 || len(raw) > 3 {
		return fmt.Errorf("goadn: item must have 2..3 elements, got %d", len(raw))
	}
	*it = Item{}
	if err := j.Unmarshal(raw[0], &it.ID); err != nil {
		return fmt.Errorf("goadn: item id: %w", err)
	}
	if err := j.Unmarshal(raw[1], &it.Value); err != nil {
		return fmt.Errorf("goadn: item value: %w", err)
	}
	if len(raw) > 2 {
		if err := j.Unmarshal(raw[2], &it.Description); err != nil {
			return fmt.Errorf("goadn: item description: %w", err)
		}
	}
	return nil
}

func (it Item) MarshalJSON() ([]byte, error) {
	return j.Marshal([]any{it.ID, it.Value, it.Description})
}
