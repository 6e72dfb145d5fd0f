// Package llm connects prompt chains to a language model through langchaingo.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/killallgit/stagewise/pkg/config"
	"github.com/killallgit/stagewise/pkg/logger"
	"github.com/killallgit/stagewise/pkg/prompt"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel creates the model selected by cfg.Provider
func NewModel(cfg *config.Config) (llms.Model, error) {
	switch cfg.Provider {
	case "", "ollama":
		model, err := ollama.New(
			ollama.WithModel(cfg.Ollama.Model),
			ollama.WithServerURL(cfg.Ollama.URL),
		)
		if err != nil {
			return nil, fmt.Errorf("creating ollama client: %w", err)
		}
		return model, nil

	case "openai":
		opts := []openai.Option{openai.WithModel(cfg.OpenAI.Model)}
		if cfg.OpenAI.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.OpenAI.APIKey))
		}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		return model, nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Timeout returns the per-call timeout configured for the selected provider
func Timeout(cfg *config.Config) time.Duration {
	if cfg.Provider == "openai" {
		return cfg.OpenAI.Timeout
	}
	return cfg.Ollama.Timeout
}

// NewExecutor returns a prompt.Executor that sends each prompt to model as
// a single human message. A positive timeout bounds every call.
func NewExecutor(model llms.Model, timeout time.Duration, options ...llms.CallOption) prompt.Executor {
	log := logger.WithComponent("llm")

	return func(ctx context.Context, text string, step int) (string, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		out, err := llms.GenerateFromSinglePrompt(ctx, model, text, options...)
		if err != nil {
			return "", fmt.Errorf("generate step %d: %w", step, err)
		}

		log.Debug("step %d answered in %s (%d chars)", step, time.Since(start).Round(time.Millisecond), len(out))
		return out, nil
	}
}

// NewChatExecutor is like NewExecutor but prefixes every request with a
// system message. An empty system text sends the prompt alone.
func NewChatExecutor(model llms.Model, system string, timeout time.Duration, options ...llms.CallOption) prompt.Executor {
	log := logger.WithComponent("llm")

	return func(ctx context.Context, text string, step int) (string, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		messages := make([]llms.ChatMessage, 0, 2)
		if system != "" {
			messages = append(messages, llms.SystemChatMessage{Content: system})
		}
		messages = append(messages, llms.HumanChatMessage{Content: text})

		resp, err := model.GenerateContent(ctx, prompt.MessageContents(messages), options...)
		if err != nil {
			return "", fmt.Errorf("generate step %d: %w", step, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("generate step %d: empty response", step)
		}

		log.Debug("step %d answered with %d choices", step, len(resp.Choices))
		return resp.Choices[0].Content, nil
	}
}
