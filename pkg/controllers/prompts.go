package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/stagewise/pkg/logger"
	"github.com/killallgit/stagewise/pkg/prompt"
)

// ErrNoTemplate is returned when a request resolves to no template
var ErrNoTemplate = errors.New("no template for request")

var (
	stepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TokenCounter sizes rendered prompts
type TokenCounter interface {
	CountTokens(text string) int
}

// PromptsController renders registry contents for the command line
type PromptsController struct {
	registry    *prompt.Registry
	placeholder string
	counter     TokenCounter
}

// NewPromptsController creates a controller over reg. A non-empty
// placeholder replaces the default one in chain previews.
func NewPromptsController(reg *prompt.Registry, placeholder string) *PromptsController {
	return &PromptsController{
		registry:    reg,
		placeholder: placeholder,
	}
}

// WithTokenCounter annotates rendered prompts with their token count
func (pc *PromptsController) WithTokenCounter(counter TokenCounter) *PromptsController {
	pc.counter = counter
	return pc
}

func (pc *PromptsController) title(s, text string) string {
	if pc.counter == nil {
		return s
	}
	return fmt.Sprintf("%s (~%d tokens)", s, pc.counter.CountTokens(text))
}

// List writes every template and chain in registration order
func (pc *PromptsController) List(writer io.Writer) error {
	ids := pc.registry.ListTemplates()
	if len(ids) == 0 {
		fmt.Fprintln(writer, "No templates registered")
		return nil
	}

	w := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEMPLATE\tSTAGE\tTRIGGER\tPARTS")
	for _, id := range ids {
		t, err := pc.registry.Template(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", t.ID, t.Stage, t.Trigger, len(t.Parts))
	}

	if chains := pc.registry.ListChains(); len(chains) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "CHAIN\tSTEPS")
		for _, id := range chains {
			ch, err := pc.registry.Chain(id)
			if err != nil {
				return err
			}
			steps := make([]string, 0, ch.Len())
			for _, step := range ch.Steps {
				steps = append(steps, step.ID)
			}
			fmt.Fprintf(w, "%s\t%s\n", ch.ID, strings.Join(steps, " -> "))
		}
	}

	return w.Flush()
}

// Render resolves c to a template and writes the generated prompt
func (pc *PromptsController) Render(writer io.Writer, c prompt.Context) error {
	log := logger.WithComponent("prompts_controller")

	t, ok := pc.registry.Resolve(c)
	if !ok {
		return fmt.Errorf("%w: stage %q trigger %q variant %q", ErrNoTemplate, c.Stage, c.Trigger, c.Variant())
	}
	log.Debug("rendering %s for role %s", t.ID, c.EffectiveRole())

	text, err := t.Generate(c, c.EffectiveLocale())
	if err != nil {
		return err
	}

	fmt.Fprintln(writer, mutedStyle.Render(pc.title("# "+t.ID, text)))
	fmt.Fprintln(writer, text)
	return nil
}

// Preview writes every step prompt of a chain without calling a model
func (pc *PromptsController) Preview(writer io.Writer, chainID string, c prompt.Context) error {
	ch, err := pc.registry.Chain(chainID)
	if err != nil {
		return err
	}

	preview := *ch
	if pc.placeholder != "" && ch.Placeholder == prompt.DefaultPlaceholder {
		preview.Placeholder = pc.placeholder
	}

	prompts, err := preview.Preview(c)
	if err != nil {
		return err
	}

	for i, text := range prompts {
		pc.writeStep(writer, i, len(prompts), ch.Steps[i].ID, text)
	}
	return nil
}

// Run executes a chain with exec and writes each step's result
func (pc *PromptsController) Run(ctx context.Context, writer io.Writer, chainID string, c prompt.Context, exec prompt.Executor) error {
	log := logger.WithComponent("prompts_controller")

	ch, err := pc.registry.Chain(chainID)
	if err != nil {
		return err
	}

	log.Info("running chain %s (%d steps)", ch.ID, ch.Len())
	results, err := ch.Execute(ctx, c, exec)
	if err != nil {
		log.Error("chain %s failed: %v", ch.ID, err)
		return err
	}

	for i, text := range results {
		pc.writeStep(writer, i, len(results), ch.Steps[i].ID, text)
	}
	return nil
}

func (pc *PromptsController) writeStep(writer io.Writer, i, total int, id, text string) {
	fmt.Fprintln(writer, stepStyle.Render(pc.title(fmt.Sprintf("Step %d/%d: %s", i+1, total, id), text)))
	fmt.Fprintln(writer, text)
	fmt.Fprintln(writer)
}
