package prompt

import (
	"context"

	"github.com/spf13/cast"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
)

const (
	// ContextKey carries a ready-made Context in langchain input values
	ContextKey = "context"

	// OutputKey holds the final step's result in chain outputs
	OutputKey = "text"

	// ResultsKey holds every step's result in chain outputs
	ResultsKey = "results"
)

// ContextFromValues builds a Context from langchain-style input values.
// A Context (or *Context) under ContextKey is used as is; otherwise known
// keys populate the named fields and everything else becomes an attribute.
func ContextFromValues(values map[string]any) Context {
	switch c := values[ContextKey].(type) {
	case Context:
		return c
	case *Context:
		if c != nil {
			return *c
		}
	}

	var c Context
	for key, value := range values {
		switch key {
		case ContextKey:
		case "stage":
			c.Stage = cast.ToString(value)
		case "trigger":
			c.Trigger = cast.ToString(value)
		case "variants":
			c.Variants = cast.ToStringSlice(value)
		case "brand":
			c.Brand = cast.ToString(value)
		case "project_type":
			c.ProjectType = cast.ToString(value)
		case "role":
			c.Role = cast.ToString(value)
		case "selected_files":
			c.SelectedFiles = cast.ToStringSlice(value)
		case "selected_personas":
			c.SelectedPersonas = cast.ToStringSlice(value)
		case "category_tags":
			c.CategoryTags = cast.ToStringSlice(value)
		case "previous_output":
			c.PreviousOutput = cast.ToString(value)
		case "chain_results":
			c.ChainResults = cast.ToStringSlice(value)
		case "locale":
			c.Locale = cast.ToString(value)
		default:
			if c.Attributes == nil {
				c.Attributes = make(map[string]any)
			}
			c.Attributes[key] = value
		}
	}
	return c
}

// Formatter binds a template to a locale so it can be used wherever
// langchaingo expects a prompts.FormatPrompter, e.g. chains.NewLLMChain.
type Formatter struct {
	template *Template
	locale   string
}

var _ prompts.FormatPrompter = (*Formatter)(nil)

// Formatter returns a langchain prompt formatter for t. An empty locale
// defers to the locale of each formatted context.
func (t *Template) Formatter(locale string) *Formatter {
	return &Formatter{template: t, locale: locale}
}

// Format renders the template for the context built from values
func (f *Formatter) Format(values map[string]any) (string, error) {
	c := ContextFromValues(values)
	locale := f.locale
	if locale == "" {
		locale = c.EffectiveLocale()
	}
	return f.template.Generate(c, locale)
}

// FormatPrompt renders the template as a prompt value
func (f *Formatter) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	text, err := f.Format(values)
	if err != nil {
		return nil, err
	}
	return prompts.StringPromptValue(text), nil
}

// GetInputVariables returns no required variables: missing context fields render as empty
func (f *Formatter) GetInputVariables() []string {
	return []string{}
}

// LangChain exposes a Chain as a langchaingo chains.Chain
type LangChain struct {
	chain  *Chain
	exec   Executor
	memory schema.Memory
}

var _ chains.Chain = (*LangChain)(nil)

// NewLangChain wraps ch; every step is sent to exec
func NewLangChain(ch *Chain, exec Executor) *LangChain {
	return &LangChain{
		chain:  ch,
		exec:   exec,
		memory: memory.NewSimple(),
	}
}

// Call executes the chain for the context built from inputs
func (l *LangChain) Call(ctx context.Context, inputs map[string]any, _ ...chains.ChainCallOption) (map[string]any, error) {
	results, err := l.chain.Execute(ctx, ContextFromValues(inputs), l.exec)
	if err != nil {
		return nil, err
	}

	var last string
	if len(results) > 0 {
		last = results[len(results)-1]
	}
	return map[string]any{
		OutputKey:  last,
		ResultsKey: results,
	}, nil
}

// GetMemory returns the chain memory
func (l *LangChain) GetMemory() schema.Memory {
	return l.memory
}

// GetInputKeys returns no required keys
func (l *LangChain) GetInputKeys() []string {
	return []string{}
}

// GetOutputKeys returns the keys Call produces
func (l *LangChain) GetOutputKeys() []string {
	return []string{OutputKey, ResultsKey}
}
