// Package schema loads model definitions from YAML files into a model registry.
//
// A schema file lists modules, their models and fields, plus optional
// translation tables used to resolve display names and help text lazily:
//
//	translations:
//	  fr:
//	    superuser status: statut super-utilisateur
//	modules:
//	  - label: tests
//	    migrations: migrations/tests
//	    models:
//	      - name: examplemodel
//	        verbose_name: this is an example for table comment
//	        fields:
//	          - name: created_at
//	            help_text: model creation time
package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/dbcomments/pkg/model"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a schema file.
type File struct {
	Translations map[string]map[string]string `yaml:"translations"`
	Modules      []ModuleDef                  `yaml:"modules"`
}

// ModuleDef declares one module.
type ModuleDef struct {
	Label      string     `yaml:"label"`
	Migrations string     `yaml:"migrations"`
	Models     []ModelDef `yaml:"models"`
}

// ModelDef declares one model.
type ModelDef struct {
	Name        string     `yaml:"name"`
	Table       string     `yaml:"table"`
	VerboseName *string    `yaml:"verbose_name"`
	Parent      string     `yaml:"parent"`
	Abstract    bool       `yaml:"abstract"`
	Proxy       bool       `yaml:"proxy"`
	Managed     *bool      `yaml:"managed"`
	Fields      []FieldDef `yaml:"fields"`
}

// FieldDef declares one field.
type FieldDef struct {
	Name        string `yaml:"name"`
	Column      string `yaml:"column"`
	VerboseName string `yaml:"verbose_name"`
	HelpText    string `yaml:"help_text"`
}

// Schema is the result of loading one or more schema files.
type Schema struct {
	Registry   *model.Registry
	Translator *model.Translator
}

// Parse decodes a single schema document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, err
	}
	return &f, nil
}

// ParseFile reads and decodes a schema file.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer func() { _ = fh.Close() }()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}

	// Migration directories are relative to the schema file.
	base := filepath.Dir(path)
	for i := range f.Modules {
		if dir := f.Modules[i].Migrations; dir != "" && !filepath.IsAbs(dir) {
			f.Modules[i].Migrations = filepath.Join(base, dir)
		}
	}
	return f, nil
}

// Load reads every schema file and builds the registry. Display names and
// help text resolve through a translator set to lang.
func Load(lang language.Tag, paths ...string) (*Schema, error) {
	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		f, err := ParseFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return Build(lang, files...)
}

// Build turns decoded schema files into a registry.
func Build(lang language.Tag, files ...*File) (*Schema, error) {
	translations := make(map[string]map[string]string)
	for _, f := range files {
		for l, msgs := range f.Translations {
			if translations[l] == nil {
				translations[l] = make(map[string]string)
			}
			for k, v := range msgs {
				translations[l][k] = v
			}
		}
	}
	cat, err := model.NewCatalog(translations)
	if err != nil {
		return nil, err
	}

	b := &builder{
		registry: model.NewRegistry(),
		tr:       model.NewTranslator(cat, lang),
	}
	for _, f := range files {
		for _, md := range f.Modules {
			if err := b.addModule(md); err != nil {
				return nil, err
			}
		}
	}
	return &Schema{Registry: b.registry, Translator: b.tr}, nil
}

type builder struct {
	registry *model.Registry
	tr       *model.Translator
}

func (b *builder) addModule(md ModuleDef) error {
	if md.Label == "" {
		return fmt.Errorf("module without label")
	}
	mod := b.registry.AddModule(md.Label)
	if md.Migrations != "" {
		mod.MigrationsDir = md.Migrations
	}

	for _, def := range md.Models {
		m, err := b.buildModel(md.Label, def)
		if err != nil {
			return fmt.Errorf("module %s: %w", md.Label, err)
		}
		if err := b.registry.AddModel(m); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) buildModel(label string, def ModelDef) (*model.Model, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("model without name")
	}

	m := &model.Model{
		Module:    label,
		Name:      def.Name,
		Table:     def.Table,
		Abstract:  def.Abstract,
		Proxy:     def.Proxy,
		Unmanaged: def.Managed != nil && !*def.Managed,
	}
	switch {
	case def.VerboseName == nil:
		m.VerboseName = model.String(model.DefaultModelVerboseName(def.Name))
	case *def.VerboseName != "":
		m.VerboseName = b.tr.Lazy(*def.VerboseName)
	}

	if def.Parent != "" {
		parent, err := b.lookup(label, def.Parent)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", def.Name, err)
		}
		for _, pf := range parent.Fields {
			if parent.Abstract && pf.DeclaredOn(parent) {
				// Fields of an abstract parent are copied onto the child.
				copied := *pf
				copied.Model = m
				m.Fields = append(m.Fields, &copied)
				continue
			}
			m.Fields = append(m.Fields, pf)
		}
		if def.Proxy && def.Table == "" {
			m.Table = parent.Table
		}
	}

	for _, fd := range def.Fields {
		if fd.Name == "" {
			return nil, fmt.Errorf("model %s: field without name", def.Name)
		}
		f := &model.Field{Name: fd.Name, Column: fd.Column, Model: m}
		if f.Column == "" {
			f.Column = fd.Name
		}
		if fd.VerboseName != "" {
			f.VerboseName = b.tr.Lazy(fd.VerboseName)
		} else {
			f.VerboseName = model.String(model.DefaultVerboseName(fd.Name))
		}
		if fd.HelpText != "" {
			f.HelpText = b.tr.Lazy(fd.HelpText)
		}
		m.Fields = append(m.Fields, f)
	}
	return m, nil
}

// lookup resolves "name" within label or "label.name" across modules.
// Parents must be declared before their children.
func (b *builder) lookup(label, ref string) (*model.Model, error) {
	if l, name, ok := strings.Cut(ref, "."); ok {
		label, ref = l, name
	}
	mod, ok := b.registry.Module(label)
	if !ok {
		return nil, fmt.Errorf("parent %q: unknown module %q", ref, label)
	}
	for _, m := range mod.Models {
		if m.Name == ref {
			return m, nil
		}
	}
	return nil, fmt.Errorf("parent %q not found in module %q (parents must be declared first)", ref, label)
}
