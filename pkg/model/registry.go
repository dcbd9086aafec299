package model

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// Registry is an in-memory Introspector. Modules and models keep the order
// in which they were added.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
	order   []string
	byType  map[reflect.Type]*Model
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*Module),
		byType:  make(map[reflect.Type]*Model),
	}
}

// AddModule registers an empty module, or returns the existing one.
func (r *Registry) AddModule(label string) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addModuleLocked(label)
}

func (r *Registry) addModuleLocked(label string) *Module {
	if mod, ok := r.modules[label]; ok {
		return mod
	}
	mod := &Module{Label: label}
	r.modules[label] = mod
	r.order = append(r.order, label)
	return mod
}

// AddModel appends m to its module, creating the module if needed.
// Table defaults to "<module>_<name>".
func (r *Registry) AddModel(m *Model) error {
	if m.Module == "" {
		return fmt.Errorf("model %q has no module label", m.Name)
	}
	if m.Name == "" {
		return fmt.Errorf("model in module %q has no name", m.Module)
	}
	if m.Table == "" {
		m.Table = DefaultTableName(m.Module, m.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	mod := r.addModuleLocked(m.Module)
	for _, existing := range mod.Models {
		if existing.Name == m.Name {
			return fmt.Errorf("model %s.%s already registered", m.Module, m.Name)
		}
	}
	mod.Models = append(mod.Models, m)
	return nil
}

// Module looks up a module by label.
func (r *Registry) Module(label string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mod, ok := r.modules[label]
	return mod, ok
}

// Modules returns all modules in registration order.
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mods := make([]*Module, 0, len(r.order))
	for _, label := range r.order {
		mods = append(mods, r.modules[label])
	}
	return mods
}

// StructOption customizes RegisterStruct.
type StructOption func(*structOptions)

type structOptions struct {
	name        string
	table       string
	verboseName Text
	abstract    bool
	proxy       bool
	unmanaged   bool
	translator  *Translator
}

// WithName overrides the model name (default: lowercased type name).
func WithName(name string) StructOption {
	return func(o *structOptions) { o.name = name }
}

// WithTable overrides the table name.
func WithTable(table string) StructOption {
	return func(o *structOptions) { o.table = table }
}

// WithVerboseName sets the model display name.
func WithVerboseName(t Text) StructOption {
	return func(o *structOptions) { o.verboseName = t }
}

// AsAbstract marks the model abstract.
func AsAbstract() StructOption {
	return func(o *structOptions) { o.abstract = true }
}

// AsProxy marks the model as a proxy.
func AsProxy() StructOption {
	return func(o *structOptions) { o.proxy = true }
}

// AsUnmanaged marks the model's table as not owned by this schema.
func AsUnmanaged() StructOption {
	return func(o *structOptions) { o.unmanaged = true }
}

// WithTranslator makes the verbose and help tags lazily translated keys.
func WithTranslator(t *Translator) StructOption {
	return func(o *structOptions) { o.translator = t }
}

// RegisterStruct registers the struct type of v as a model of module label.
//
// Exported fields become model fields. Recognized tags:
//
//	db:"column"        column name ("-" skips the field; default snake_case of the name)
//	verbose:"..."      display name (default: field name with spaces)
//	help:"..."         help text
//
// An embedded struct whose type is already registered is a base model: its
// fields are inherited and stay attributed to the base. Any other embedded
// struct is a mixin and its fields are declared on the new model.
func (r *Registry) RegisterStruct(label string, v any, opts ...StructOption) (*Model, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot register %T: not a struct", v)
	}

	o := structOptions{name: strings.ToLower(t.Name())}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Model{
		Module:      label,
		Name:        o.name,
		Table:       o.table,
		VerboseName: o.verboseName,
		Abstract:    o.abstract,
		Proxy:       o.proxy,
		Unmanaged:   o.unmanaged,
	}
	if m.VerboseName == nil {
		m.VerboseName = String(DefaultModelVerboseName(t.Name()))
	}

	r.mu.RLock()
	fields, err := r.collectFields(t, m, o.translator)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	m.Fields = fields

	if err := r.AddModel(m); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.byType[t] = m
	r.mu.Unlock()
	return m, nil
}

func (r *Registry) collectFields(t reflect.Type, m *Model, tr *Translator) ([]*Field, error) {
	var fields []*Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		if sf.Anonymous {
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				if base, ok := r.byType[et]; ok {
					for _, bf := range base.Fields {
						if base.Abstract && bf.DeclaredOn(base) {
							// Fields of an abstract base are copied onto the child.
							copied := *bf
							copied.Model = m
							fields = append(fields, &copied)
							continue
						}
						fields = append(fields, bf)
					}
					continue
				}
				mixin, err := r.collectFields(et, m, tr)
				if err != nil {
					return nil, err
				}
				fields = append(fields, mixin...)
				continue
			}
		}

		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("db")
		if tag == "-" {
			continue
		}

		name := toSnake(sf.Name)
		column := name
		if tag != "" {
			column = tag
		}

		f := &Field{Name: name, Column: column, Model: m}
		if v, ok := sf.Tag.Lookup("verbose"); ok {
			f.VerboseName = tagText(v, tr)
		} else {
			f.VerboseName = String(DefaultVerboseName(name))
		}
		if v, ok := sf.Tag.Lookup("help"); ok && v != "" {
			f.HelpText = tagText(v, tr)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func tagText(v string, tr *Translator) Text {
	if tr != nil {
		return tr.Lazy(v)
	}
	return String(v)
}

// DefaultTableName returns the table name used when none is given.
func DefaultTableName(module, name string) string {
	return strings.ToLower(module + "_" + name)
}

// DefaultVerboseName derives a display name from a field name.
func DefaultVerboseName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// DefaultModelVerboseName derives a display name from a model type name
// ("ExampleModel" -> "example model").
func DefaultModelVerboseName(name string) string {
	return camelToWords(name)
}

// toSnake converts a Go identifier to snake_case ("UserID" -> "user_id").
func toSnake(s string) string {
	return splitCamel(s, '_')
}

// camelToWords converts a type name to lowercase words ("ExampleModel" -> "example model").
func camelToWords(s string) string {
	return splitCamel(s, ' ')
}

func splitCamel(s string, sep rune) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune(sep)
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
