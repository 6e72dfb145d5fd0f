package prompt

import (
	"context"
	"errors"
)

const (
	// DefaultLocale is the universal fallback for all locale-keyed text
	DefaultLocale = "en"

	// DefaultSeparator joins the generated parts of a template
	DefaultSeparator = "\n\n"

	// DefaultPlaceholder stands in for a step result during chain previews
	DefaultPlaceholder = "[OUTPUT FROM PREVIOUS STEP]"
)

// Roles understood by the built-in catalog. Any other string is a valid role.
const (
	RoleResearcher    = "researcher"
	RoleNonResearcher = "non-researcher"

	// DefaultRole is applied when a Context carries no role
	DefaultRole = RoleNonResearcher
)

// Triggers a workflow stage can be invoked with
const (
	TriggerExecute = "execute"
	TriggerAssess  = "assess"
	TriggerRefine  = "refine"
)

var (
	// ErrTemplateNotFound is returned by id lookups that miss
	ErrTemplateNotFound = errors.New("template not found")

	// ErrChainNotFound is returned by chain lookups that miss
	ErrChainNotFound = errors.New("chain not found")

	// ErrInvalidDefinition reports a malformed template or chain definition
	ErrInvalidDefinition = errors.New("invalid prompt definition")
)

// Executor sends a prompt to the AI service and returns its reply.
// step is the zero-based index of the chain step being executed.
type Executor func(ctx context.Context, prompt string, step int) (string, error)

// Part is a named unit of prompt text
type Part interface {
	// Name identifies the part in errors and logs
	Name() string

	// Roles returns the roles the part is visible to; empty means all roles
	Roles() []string

	// Generate renders the part for the given context and locale
	Generate(c Context, locale string) (string, error)
}
