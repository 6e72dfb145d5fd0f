// Package tokens estimates the size of rendered prompts.
package tokens

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts prompt tokens with a tiktoken encoding. A Counter without
// an encoding falls back to Estimate.
type Counter struct {
	mu      sync.Mutex
	encoder *tiktoken.Tiktoken
}

// NewCounter creates a counter with the encoding used by model
func NewCounter(model string) (*Counter, error) {
	encoder, err := tiktoken.GetEncoding(encodingForModel(model))
	if err != nil {
		return nil, err
	}
	return &Counter{encoder: encoder}, nil
}

// NewEstimator creates a counter that never loads an encoding
func NewEstimator() *Counter {
	return &Counter{}
}

// CountTokens returns the number of tokens in text
func (c *Counter) CountTokens(text string) int {
	if c == nil || c.encoder == nil {
		return Estimate(text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.encoder.Encode(text, nil, nil))
}

// CountAll returns the token count of every text and their sum
func (c *Counter) CountAll(texts []string) ([]int, int) {
	counts := make([]int, len(texts))
	total := 0
	for i, text := range texts {
		counts[i] = c.CountTokens(text)
		total += counts[i]
	}
	return counts, total
}

func encodingForModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "davinci"), strings.Contains(m, "curie"):
		return "p50k_base"
	default:
		// Close enough for gpt-4, gpt-3.5 and most local models
		return "cl100k_base"
	}
}

// Estimate approximates a token count as the larger of the word count and
// a quarter of the byte length.
func Estimate(text string) int {
	words := len(strings.Fields(text))
	chars := len(text) / 4
	if words > chars {
		return words
	}
	return chars
}
