// Package entity describes the tables the engine serves: their fields,
// constraints and the Go types that back them.
package entity

import (
	"fmt"
	"slices"
)

// PrimaryKey is the engine-assigned, immutable key column of every entity
const PrimaryKey = "id"

// Model is embedded by every entity struct
type Model struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
}

// GetID returns the primary key
func (m *Model) GetID() int64 {
	return m.ID
}

// Bindings maps a column name to a pointer to the struct field that holds it.
// Supported pointer types are listed in Assign.
type Bindings map[string]any

// Record is a persisted entity. Implementations list their columns explicitly
// in Bindings so the engines never inspect struct layout at runtime.
type Record interface {
	GetID() int64
	Bindings() Bindings
}

// Descriptor is the schema metadata of one entity type
type Descriptor struct {
	// Name is the registry key and the external name, e.g. "journal_lines".
	Name string
	// Table is the relational table, e.g. "journal_entry_lines".
	Table string
	// Label is a human readable singular used in error messages.
	Label  string
	Fields []Field
	// New returns an empty record of this type.
	New func() Record
	// UpsertKey, when set, makes the key columns jointly unique and enables
	// additive upserts on the Accumulate columns.
	UpsertKey  []string
	Accumulate []string
}

// Field returns the field with the given name
func (d *Descriptor) Field(name string) (*Field, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// Columns returns the field names in declaration order, primary key excluded
func (d *Descriptor) Columns() []string {
	cols := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		cols[i] = f.Name
	}
	return cols
}

// HasUpsert reports whether the entity supports additive upserts
func (d *Descriptor) HasUpsert() bool {
	return len(d.UpsertKey) > 0
}

// DisplayName returns Label, falling back to Name
func (d *Descriptor) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// Validate checks the descriptor is internally consistent: unique field
// names, a binding for every field and defaults of the right Go type.
func (d *Descriptor) Validate() error {
	if d.Name == "" || d.Table == "" {
		return fmt.Errorf("descriptor needs a name and a table")
	}
	if d.New == nil {
		return fmt.Errorf("descriptor %s: New is required", d.Name)
	}
	bindings := d.New().Bindings()
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == PrimaryKey {
			return fmt.Errorf("descriptor %s: %s is implicit and cannot be declared", d.Name, PrimaryKey)
		}
		if seen[f.Name] {
			return fmt.Errorf("descriptor %s: duplicate field %s", d.Name, f.Name)
		}
		seen[f.Name] = true
		b, ok := bindings[f.Name]
		if !ok {
			return fmt.Errorf("descriptor %s: field %s has no binding", d.Name, f.Name)
		}
		if !bindingMatches(f.Type, b) {
			return fmt.Errorf("descriptor %s: field %s binding %T does not hold %s", d.Name, f.Name, b, f.Type)
		}
		if f.Default != nil {
			if err := Assign(d.New().Bindings()[f.Name], f.Default); err != nil {
				return fmt.Errorf("descriptor %s: field %s default: %w", d.Name, f.Name, err)
			}
		}
	}
	if len(bindings) != len(d.Fields) {
		return fmt.Errorf("descriptor %s: %d bindings for %d fields", d.Name, len(bindings), len(d.Fields))
	}
	for _, k := range slices.Concat(d.UpsertKey, d.Accumulate) {
		if !seen[k] {
			return fmt.Errorf("descriptor %s: upsert column %s is not a field", d.Name, k)
		}
	}
	return nil
}
