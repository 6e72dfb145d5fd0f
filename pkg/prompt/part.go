package prompt

import (
	"golang.org/x/text/language"
)

// Localized maps locale tags to text
type Localized map[string]string

// Text returns a Localized holding only the default locale
func Text(s string) Localized {
	return Localized{DefaultLocale: s}
}

// Resolve picks the text for locale, falling back to the locale's base
// language, then to DefaultLocale, then to "".
func (l Localized) Resolve(locale string) string {
	if len(l) == 0 {
		return ""
	}
	if s, ok := l[locale]; ok {
		return s
	}
	if tag, err := language.Parse(locale); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			if s, ok := l[base.String()]; ok {
				return s
			}
		}
	}
	return l[DefaultLocale]
}

type visibility []string

func (v visibility) Roles() []string { return v }

// StaticPart renders fixed, locale-keyed text
type StaticPart struct {
	visibility
	name string
	text Localized
}

// NewStaticPart creates a part that always renders the same text for a locale
func NewStaticPart(name string, text Localized, roles ...string) *StaticPart {
	return &StaticPart{visibility: roles, name: name, text: text}
}

func (p *StaticPart) Name() string { return p.name }

func (p *StaticPart) Generate(_ Context, locale string) (string, error) {
	return p.text.Resolve(locale), nil
}

// DynamicFunc computes part text from the context. It must be pure.
type DynamicFunc func(c Context, locale string) (string, error)

// DynamicPart renders text computed from the context
type DynamicPart struct {
	visibility
	name string
	fn   DynamicFunc
}

// NewDynamicPart creates a part backed by a fallible function
func NewDynamicPart(name string, fn DynamicFunc, roles ...string) *DynamicPart {
	return &DynamicPart{visibility: roles, name: name, fn: fn}
}

// Computed creates a dynamic part from a function that cannot fail
func Computed(name string, fn func(c Context, locale string) string, roles ...string) *DynamicPart {
	return NewDynamicPart(name, func(c Context, locale string) (string, error) {
		return fn(c, locale), nil
	}, roles...)
}

func (p *DynamicPart) Name() string { return p.name }

func (p *DynamicPart) Generate(c Context, locale string) (string, error) {
	if p.fn == nil {
		return "", nil
	}
	return p.fn(c, locale)
}

// Predicate decides which branch a ConditionalPart renders
type Predicate func(c Context) bool

// ConditionalPart delegates to one of two parts. A nil else branch renders "".
type ConditionalPart struct {
	visibility
	name      string
	predicate Predicate
	then      Part
	otherwise Part
}

// NewConditionalPart creates a part that renders then when predicate holds
// and otherwise (which may be nil) when it does not.
func NewConditionalPart(name string, predicate Predicate, then, otherwise Part, roles ...string) *ConditionalPart {
	return &ConditionalPart{
		visibility: roles,
		name:       name,
		predicate:  predicate,
		then:       then,
		otherwise:  otherwise,
	}
}

func (p *ConditionalPart) Name() string { return p.name }

func (p *ConditionalPart) Generate(c Context, locale string) (string, error) {
	branch := p.otherwise
	if p.predicate != nil && p.predicate(c) {
		branch = p.then
	}
	if branch == nil {
		return "", nil
	}
	return branch.Generate(c, locale)
}

// VarsBuilder maps a context to template variables
type VarsBuilder func(c Context) map[string]any

// TemplatedPart interpolates a locale-keyed template with variables built from the context
type TemplatedPart struct {
	visibility
	name     string
	template Localized
	vars     VarsBuilder
}

// NewTemplatedPart creates a part rendered through Interpolate. A nil
// builder uses Context.Vars.
func NewTemplatedPart(name string, template Localized, vars VarsBuilder, roles ...string) *TemplatedPart {
	if vars == nil {
		vars = Context.Vars
	}
	return &TemplatedPart{visibility: roles, name: name, template: template, vars: vars}
}

func (p *TemplatedPart) Name() string { return p.name }

func (p *TemplatedPart) Generate(c Context, locale string) (string, error) {
	tmpl := p.template.Resolve(locale)
	if tmpl == "" {
		return "", nil
	}
	return Interpolate(tmpl, p.vars(c)), nil
}

// VisibleTo reports whether p is shown to role
func VisibleTo(p Part, role string) bool {
	roles := p.Roles()
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
