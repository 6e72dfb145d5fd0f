package prompt

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// ChatFormatter renders a template as chat messages: an optional system
// message followed by the generated prompt as a human message.
type ChatFormatter struct {
	template *Template
	system   Localized
	locale   string
}

var _ prompts.FormatPrompter = (*ChatFormatter)(nil)

// ChatFormatter returns a chat formatter for t. system may be empty.
func (t *Template) ChatFormatter(system Localized, locale string) *ChatFormatter {
	return &ChatFormatter{template: t, system: system, locale: locale}
}

func (f *ChatFormatter) localeFor(c Context) string {
	if f.locale != "" {
		return f.locale
	}
	return c.EffectiveLocale()
}

// FormatMessages renders the messages for the context built from values
func (f *ChatFormatter) FormatMessages(values map[string]any) ([]llms.ChatMessage, error) {
	c := ContextFromValues(values)
	locale := f.localeFor(c)

	human, err := f.template.Generate(c, locale)
	if err != nil {
		return nil, err
	}

	messages := make([]llms.ChatMessage, 0, 2)
	if system := f.system.Resolve(locale); system != "" {
		messages = append(messages, llms.SystemChatMessage{Content: system})
	}
	messages = append(messages, llms.HumanChatMessage{Content: human})
	return messages, nil
}

// Format renders the messages as a single buffer string
func (f *ChatFormatter) Format(values map[string]any) (string, error) {
	messages, err := f.FormatMessages(values)
	if err != nil {
		return "", err
	}
	text, err := llms.GetBufferString(messages, "Human", "AI")
	if err != nil {
		return "", fmt.Errorf("failed to render chat messages: %w", err)
	}
	return text, nil
}

// FormatPrompt renders the messages as a chat prompt value
func (f *ChatFormatter) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	messages, err := f.FormatMessages(values)
	if err != nil {
		return nil, err
	}
	return prompts.ChatPromptValue(messages), nil
}

// GetInputVariables returns no required variables
func (f *ChatFormatter) GetInputVariables() []string {
	return []string{}
}

// MessageContents converts chat messages into model request content
func MessageContents(messages []llms.ChatMessage) []llms.MessageContent {
	contents := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, llms.TextParts(m.GetType(), m.GetContent()))
	}
	return contents
}
