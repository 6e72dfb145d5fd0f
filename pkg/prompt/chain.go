package prompt

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/killallgit/stagewise/pkg/logger"
)

// Chain is an ordered sequence of templates whose steps feed each other
type Chain struct {
	ID          string
	Steps       []*Template
	Placeholder string
}

// NewChain creates a chain over steps, previewed with DefaultPlaceholder
func NewChain(id string, steps ...*Template) *Chain {
	return &Chain{
		ID:          id,
		Steps:       steps,
		Placeholder: DefaultPlaceholder,
	}
}

// Len returns the number of steps
func (ch *Chain) Len() int {
	return len(ch.Steps)
}

// Execute runs every step in order. Each step's prompt is rendered from the
// current context and passed to exec; the result is appended to the results
// and threaded into the next step's context. Step i+1 never starts before
// step i returns. Any error aborts the chain and no results are returned.
// A nil step fails with ErrInvalidDefinition before any executor call for it.
func (ch *Chain) Execute(ctx context.Context, initial Context, exec Executor) ([]string, error) {
	log := logger.WithComponent("prompt_chain")
	runID := uuid.NewString()
	locale := initial.EffectiveLocale()

	results := make([]string, 0, len(ch.Steps))
	current := initial

	for i, step := range ch.Steps {
		if step == nil {
			return nil, fmt.Errorf("chain %s step %d: %w: missing template", ch.ID, i, ErrInvalidDefinition)
		}

		text, err := step.Generate(current, locale)
		if err != nil {
			return nil, fmt.Errorf("chain %s step %d: %w", ch.ID, i, err)
		}

		log.Debug("run %s: chain %s step %d (%s) sending %d chars", runID, ch.ID, i, step.ID, len(text))
		result, err := exec(ctx, text, i)
		if err != nil {
			log.Warn("run %s: chain %s aborted at step %d: %v", runID, ch.ID, i, err)
			return nil, fmt.Errorf("chain %s step %d: %w", ch.ID, i, err)
		}

		results = append(results, result)
		current = current.WithStepResult(result)
	}

	log.Debug("run %s: chain %s completed %d steps", runID, ch.ID, len(results))
	return results, nil
}

// Preview renders every step's prompt without calling any executor. Each
// step after the first sees the placeholder as the previous step's result.
func (ch *Chain) Preview(initial Context) ([]string, error) {
	placeholder := ch.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	locale := initial.EffectiveLocale()

	prompts := make([]string, 0, len(ch.Steps))
	current := initial

	for i, step := range ch.Steps {
		if step == nil {
			return nil, fmt.Errorf("chain %s step %d: %w: missing template", ch.ID, i, ErrInvalidDefinition)
		}

		text, err := step.Generate(current, locale)
		if err != nil {
			return nil, fmt.Errorf("chain %s step %d: %w", ch.ID, i, err)
		}
		prompts = append(prompts, text)
		current = current.WithStepResult(placeholder)
	}

	return prompts, nil
}
