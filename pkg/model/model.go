// Package model describes application data models the way the comment
// synchronizer sees them.
//
// This package contains:
//   - Descriptors (Module, Model, Field)
//   - Resolvable text (Text, String, Translator)
//   - The Introspector contract and the Registry implementation
//
// Descriptors are read-only once registered. Nothing here talks to a database.
package model

// Module is an application module: a label and the models it defines.
type Module struct {
	// Label uniquely identifies the module (e.g., "auth", "tests")
	Label string
	// Models are the module's models in registration order
	Models []*Model
	// MigrationsDir is the directory holding the module's schema migrations
	MigrationsDir string
}

// HasModels reports whether the module defines any models.
func (m *Module) HasModels() bool {
	return m != nil && len(m.Models) > 0
}

// Model describes one data-model type mapped to exactly one table.
type Model struct {
	// Module is the label of the owning module
	Module string
	// Name is the model identifier within its module
	Name string
	// Table is the database table name
	Table string
	// VerboseName is the human display name (optional)
	VerboseName Text
	// Fields lists every field of the model in declaration order,
	// including fields inherited from a base model
	Fields []*Field
	// Abstract models have no table of their own
	Abstract bool
	// Proxy models reuse the table of another model
	Proxy bool
	// Unmanaged models have tables whose lifecycle is not owned by this schema
	Unmanaged bool
}

// Managed reports whether the model's table is owned by this schema.
func (m *Model) Managed() bool {
	return !m.Unmanaged
}

// Concrete reports whether the model maps to a table this schema controls.
func (m *Model) Concrete() bool {
	return !m.Abstract && !m.Proxy && !m.Unmanaged
}

// LocalFields returns the fields declared directly on the model.
func (m *Model) LocalFields() []*Field {
	var local []*Field
	for _, f := range m.Fields {
		if f.DeclaredOn(m) {
			local = append(local, f)
		}
	}
	return local
}

// Field describes one model attribute mapped to exactly one column.
type Field struct {
	// Name is the field identifier; auto-derived display names come from it
	Name string
	// Column is the database column name
	Column string
	// Model is the model that declares the field (nil if unknown)
	Model *Model
	// VerboseName is the display name, possibly derived from Name
	VerboseName Text
	// HelpText is free-form documentation (optional)
	HelpText Text
}

// DeclaredOn reports whether the field is declared directly on m.
// A field without declaring-model information is never local.
func (f *Field) DeclaredOn(m *Model) bool {
	return f.Model != nil && f.Model == m
}

// Introspector exposes the modules known to the host application.
type Introspector interface {
	// Modules returns all modules in registration order.
	Modules() []*Module

	// Module looks up a module by label.
	Module(label string) (*Module, bool)
}
