package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// DefinitionPattern matches template definition files under a directory
const DefinitionPattern = "**/*.{yaml,yml,json}"

// Definitions is the structure of a template definition file
type Definitions struct {
	Templates []TemplateSpec `json:"templates" yaml:"templates"`
	Chains    []ChainSpec    `json:"chains,omitempty" yaml:"chains,omitempty"`
}

// TemplateSpec defines a template in a definition file
type TemplateSpec struct {
	ID        string     `json:"id" yaml:"id"`
	Stage     string     `json:"stage" yaml:"stage"`
	Trigger   string     `json:"trigger" yaml:"trigger"`
	Separator *string    `json:"separator,omitempty" yaml:"separator,omitempty"`
	Parts     []PartSpec `json:"parts" yaml:"parts"`
}

// PartSpec defines a part in a definition file.
//
// Exactly one of Text or Include must be set. Text containing "{{" is
// rendered through Interpolate with Context.Vars; other text is static.
// Include references a part from the loader's library by name. When and
// Unless name a context variable whose truthiness gates the part.
type PartSpec struct {
	Name    string    `json:"name" yaml:"name"`
	Text    Localized `json:"text,omitempty" yaml:"text,omitempty"`
	Include string    `json:"include,omitempty" yaml:"include,omitempty"`
	Roles   []string  `json:"roles,omitempty" yaml:"roles,omitempty"`
	When    string    `json:"when,omitempty" yaml:"when,omitempty"`
	Unless  string    `json:"unless,omitempty" yaml:"unless,omitempty"`
}

// ChainSpec defines a chain as an ordered list of template ids
type ChainSpec struct {
	ID          string   `json:"id" yaml:"id"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Steps       []string `json:"steps" yaml:"steps"`
}

// Loader turns definition files into registered templates and chains
type Loader struct {
	library map[string]Part
}

// LoaderOption is a functional option for configuring a Loader
type LoaderOption func(*Loader)

// WithPartLibrary makes parts available to definitions through include
func WithPartLibrary(parts ...Part) LoaderOption {
	return func(l *Loader) {
		for _, p := range parts {
			l.library[p.Name()] = p
		}
	}
}

// NewLoader creates a definition loader
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{library: make(map[string]Part)}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Parse decodes one definition document. JSON documents are accepted too.
func (l *Loader) Parse(data []byte) (*Definitions, error) {
	var defs Definitions

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return &defs, nil
}

// Load parses data and registers its templates, then its chains
func (l *Loader) Load(reg *Registry, data []byte) error {
	defs, err := l.Parse(data)
	if err != nil {
		return err
	}
	return l.register(reg, []*Definitions{defs})
}

// LoadFile loads a single definition file
func (l *Loader) LoadFile(reg *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definition file: %w", err)
	}
	if err := l.Load(reg, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadDir loads every definition file under dir
func (l *Loader) LoadDir(reg *Registry, dir string) error {
	return l.LoadFS(reg, os.DirFS(dir), DefinitionPattern)
}

// LoadFS loads every file in fsys matching pattern, in lexical order. All
// templates are registered before any chain so chains may reference
// templates from other files.
func (l *Loader) LoadFS(reg *Registry, fsys fs.FS, pattern string) error {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return fmt.Errorf("failed to glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	all := make([]*Definitions, 0, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read definition file: %w", err)
		}
		defs, err := l.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		all = append(all, defs)
	}

	return l.register(reg, all)
}

func (l *Loader) register(reg *Registry, all []*Definitions) error {
	for _, defs := range all {
		for _, spec := range defs.Templates {
			t, err := l.BuildTemplate(spec)
			if err != nil {
				return err
			}
			if err := reg.RegisterTemplate(t); err != nil {
				return err
			}
		}
	}

	for _, defs := range all {
		for _, spec := range defs.Chains {
			ch, err := buildChain(reg, spec)
			if err != nil {
				return err
			}
			if err := reg.RegisterChain(ch); err != nil {
				return err
			}
		}
	}
	return nil
}

// BuildTemplate converts a spec into a Template
func (l *Loader) BuildTemplate(spec TemplateSpec) (*Template, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: template without id", ErrInvalidDefinition)
	}

	parts := make([]Part, 0, len(spec.Parts))
	for i, ps := range spec.Parts {
		part, err := l.buildPart(ps)
		if err != nil {
			return nil, fmt.Errorf("template %s part %d: %w", spec.ID, i, err)
		}
		parts = append(parts, part)
	}

	t := NewTemplate(spec.ID, spec.Stage, spec.Trigger, parts...)
	if spec.Separator != nil {
		t.Separator = *spec.Separator
	}
	return t, nil
}

func (l *Loader) buildPart(spec PartSpec) (Part, error) {
	var base Part
	switch {
	case spec.Include != "" && len(spec.Text) > 0:
		return nil, fmt.Errorf("%w: part %q sets both text and include", ErrInvalidDefinition, spec.Name)
	case spec.Include != "":
		p, ok := l.library[spec.Include]
		if !ok {
			return nil, fmt.Errorf("%w: unknown include %q", ErrInvalidDefinition, spec.Include)
		}
		base = p
	case len(spec.Text) > 0:
		name := spec.Name
		if name == "" {
			return nil, fmt.Errorf("%w: text part without name", ErrInvalidDefinition)
		}
		if isTemplated(spec.Text) {
			base = NewTemplatedPart(name, spec.Text, nil)
		} else {
			base = NewStaticPart(name, spec.Text)
		}
	default:
		return nil, fmt.Errorf("%w: part %q has neither text nor include", ErrInvalidDefinition, spec.Name)
	}

	name := spec.Name
	if name == "" {
		name = base.Name()
	}
	roles := spec.Roles
	if len(roles) == 0 {
		roles = base.Roles()
	}

	if spec.When == "" && spec.Unless == "" {
		if len(spec.Roles) == 0 && name == base.Name() {
			return base, nil
		}
		always := func(Context) bool { return true }
		return NewConditionalPart(name, always, base, nil, roles...), nil
	}

	when, unless := spec.When, spec.Unless
	predicate := func(c Context) bool {
		vars := c.Vars()
		if when != "" && !Truthy(lookup(vars, when)) {
			return false
		}
		if unless != "" && Truthy(lookup(vars, unless)) {
			return false
		}
		return true
	}
	return NewConditionalPart(name, predicate, base, nil, roles...), nil
}

// UnmarshalYAML accepts either a plain string (the default locale) or a
// locale-keyed mapping
func (l *Localized) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = Text(node.Value)
		return nil
	}
	var m map[string]string
	if err := node.Decode(&m); err != nil {
		return err
	}
	*l = m
	return nil
}

func isTemplated(text Localized) bool {
	for _, s := range text {
		if strings.Contains(s, "{{") {
			return true
		}
	}
	return false
}

func buildChain(reg *Registry, spec ChainSpec) (*Chain, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: chain without id", ErrInvalidDefinition)
	}
	if len(spec.Steps) == 0 {
		return nil, fmt.Errorf("%w: chain %s has no steps", ErrInvalidDefinition, spec.ID)
	}

	steps := make([]*Template, 0, len(spec.Steps))
	for _, id := range spec.Steps {
		t, err := reg.Template(id)
		if err != nil {
			return nil, fmt.Errorf("chain %s: %w", spec.ID, err)
		}
		steps = append(steps, t)
	}

	ch := NewChain(spec.ID, steps...)
	if spec.Placeholder != "" {
		ch.Placeholder = spec.Placeholder
	}
	return ch, nil
}
