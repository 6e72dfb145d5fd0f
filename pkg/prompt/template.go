package prompt

import (
	"context"
	"fmt"
	"strings"
)

// Template is an ordered composition of parts for one workflow stage and trigger
type Template struct {
	ID        string
	Stage     string
	Trigger   string
	Separator string
	Parts     []Part
}

// NewTemplate creates a template joined with DefaultSeparator
func NewTemplate(id, stage, trigger string, parts ...Part) *Template {
	return &Template{
		ID:        id,
		Stage:     stage,
		Trigger:   trigger,
		Separator: DefaultSeparator,
		Parts:     parts,
	}
}

// NewTemplateWithOptions creates a template and applies options
func NewTemplateWithOptions(id, stage, trigger string, parts []Part, options ...TemplateOption) *Template {
	t := NewTemplate(id, stage, trigger, parts...)
	for _, opt := range options {
		opt(t)
	}
	return t
}

// TemplateOption is a functional option for configuring a Template
type TemplateOption func(*Template)

// WithSeparator overrides the string placed between parts
func WithSeparator(sep string) TemplateOption {
	return func(t *Template) {
		t.Separator = sep
	}
}

// WithParts appends parts
func WithParts(parts ...Part) TemplateOption {
	return func(t *Template) {
		t.Parts = append(t.Parts, parts...)
	}
}

// Generate renders the template for c in locale.
//
// Parts not visible to the context's effective role are skipped, the rest
// are rendered in declaration order, blank results are dropped, and the
// remainder is joined with the separator and trimmed. A part error aborts
// generation and is returned wrapped with the part name.
func (t *Template) Generate(c Context, locale string) (string, error) {
	role := c.EffectiveRole()

	sections := make([]string, 0, len(t.Parts))
	for _, part := range t.Parts {
		if part == nil || !VisibleTo(part, role) {
			continue
		}
		text, err := part.Generate(c, locale)
		if err != nil {
			return "", fmt.Errorf("template %s: part %s: %w", t.ID, part.Name(), err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sections = append(sections, text)
	}

	return strings.TrimSpace(strings.Join(sections, t.Separator)), nil
}

// VisibleParts returns the names of the parts shown to role, in order
func (t *Template) VisibleParts(role string) []string {
	names := make([]string, 0, len(t.Parts))
	for _, part := range t.Parts {
		if part != nil && VisibleTo(part, role) {
			names = append(names, part.Name())
		}
	}
	return names
}

// Chain runs one step: this template's prompt is sent to exec, and next is
// rendered against a context carrying the result. The derived context is
// returned alongside the rendered prompt.
func (t *Template) Chain(ctx context.Context, next *Template, c Context, exec Executor) (string, Context, error) {
	if next == nil {
		return "", c, fmt.Errorf("template %s: %w: missing next template", t.ID, ErrInvalidDefinition)
	}
	locale := c.EffectiveLocale()

	current, err := t.Generate(c, locale)
	if err != nil {
		return "", c, err
	}

	result, err := exec(ctx, current, 0)
	if err != nil {
		return "", c, fmt.Errorf("template %s: execute: %w", t.ID, err)
	}

	nextCtx := c.WithStepResult(result)
	rendered, err := next.Generate(nextCtx, locale)
	if err != nil {
		return "", nextCtx, err
	}
	return rendered, nextCtx, nil
}
