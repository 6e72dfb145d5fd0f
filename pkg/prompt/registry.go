package prompt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/killallgit/stagewise/pkg/logger"
)

const (
	// KnowledgeBaseStage aggregates earlier stages and supports synthesis mode
	KnowledgeBaseStage = "Knowledge Base"

	// SynthesisTemplateID is resolved for aggregation stages carrying a synthesis selection
	SynthesisTemplateID = "knowledge_base_synthesis"
)

// Registry maps template and chain ids to their definitions and resolves
// workflow requests to templates. It is populated at startup and read
// concurrently afterwards.
type Registry struct {
	mu            sync.RWMutex
	templates     map[string]*Template
	templateOrder []string
	chains        map[string]*Chain
	chainOrder    []string

	synthesisID       string
	aggregationStages map[string]bool
}

// RegistryOption is a functional option for configuring a Registry
type RegistryOption func(*Registry)

// WithSynthesisTemplate overrides the template id used in synthesis mode
func WithSynthesisTemplate(id string) RegistryOption {
	return func(r *Registry) {
		r.synthesisID = id
	}
}

// WithAggregationStage marks an additional stage as supporting synthesis mode
func WithAggregationStage(stage string) RegistryOption {
	return func(r *Registry) {
		r.aggregationStages[normalizeKey(stage)] = true
	}
}

// NewRegistry creates an empty registry
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{
		templates:         make(map[string]*Template),
		chains:            make(map[string]*Chain),
		synthesisID:       SynthesisTemplateID,
		aggregationStages: map[string]bool{normalizeKey(KnowledgeBaseStage): true},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// normalizeKey lower-cases s and folds spaces and dashes into single underscores
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

// Key builds the lookup key for a stage, trigger and optional variant,
// e.g. Key("Knowledge Base", "execute", "") == "knowledge_base_execute".
func Key(stage, trigger, variant string) string {
	key := normalizeKey(stage) + "_" + normalizeKey(trigger)
	if v := normalizeKey(variant); v != "" {
		key += "_" + v
	}
	return key
}

// RegisterTemplate adds t under t.ID, replacing any template with the same id
func (r *Registry) RegisterTemplate(t *Template) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("%w: template without id", ErrInvalidDefinition)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[t.ID]; !exists {
		r.templateOrder = append(r.templateOrder, t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

// RegisterChain adds ch under ch.ID, replacing any chain with the same id
func (r *Registry) RegisterChain(ch *Chain) error {
	if ch == nil || ch.ID == "" {
		return fmt.Errorf("%w: chain without id", ErrInvalidDefinition)
	}
	for i, step := range ch.Steps {
		if step == nil {
			return fmt.Errorf("%w: chain %s step %d has no template", ErrInvalidDefinition, ch.ID, i)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chains[ch.ID]; !exists {
		r.chainOrder = append(r.chainOrder, ch.ID)
	}
	r.chains[ch.ID] = ch
	return nil
}

// MustRegisterTemplate registers t and panics if it is invalid
func (r *Registry) MustRegisterTemplate(t *Template) {
	if err := r.RegisterTemplate(t); err != nil {
		panic(fmt.Sprintf("failed to register template: %v", err))
	}
}

// MustRegisterChain registers ch and panics if it is invalid
func (r *Registry) MustRegisterChain(ch *Chain) {
	if err := r.RegisterChain(ch); err != nil {
		panic(fmt.Sprintf("failed to register chain: %v", err))
	}
}

// Template retrieves a template by id
func (r *Registry) Template(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.templates[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// Chain retrieves a chain by id
func (r *Registry) Chain(id string) (*Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, exists := r.chains[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, id)
	}
	return ch, nil
}

// ListTemplates returns all template ids in registration order
func (r *Registry) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.templateOrder...)
}

// ListChains returns all chain ids in registration order
func (r *Registry) ListChains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.chainOrder...)
}

// ResolveKey looks up stage+trigger+variant, then stage+trigger when a
// variant was given and missed. It never invents a template.
func (r *Registry) ResolveKey(stage, trigger, variant string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.resolveLocked(stage, trigger, variant)
}

func (r *Registry) resolveLocked(stage, trigger, variant string) (*Template, bool) {
	log := logger.WithComponent("prompt_registry")

	key := Key(stage, trigger, variant)
	if t, ok := r.templates[key]; ok {
		log.Debug("resolved %s", key)
		return t, true
	}

	if normalizeKey(variant) != "" {
		base := Key(stage, trigger, "")
		if t, ok := r.templates[base]; ok {
			log.Debug("resolved %s via fallback from %s", base, key)
			return t, true
		}
	}

	log.Debug("no template for %s", key)
	return nil, false
}

// Resolve picks the template for a request context.
//
// An aggregation stage (Knowledge Base) with a populated synthesis selection
// resolves to the synthesis template only. Otherwise ResolveKey is applied
// to the context's stage, trigger and variant. A miss is reported with
// false; choosing a default prompt is the caller's decision.
func (r *Registry) Resolve(c Context) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.aggregationStages[normalizeKey(c.Stage)] && c.HasSynthesis() {
		t, ok := r.templates[r.synthesisID]
		if !ok {
			logger.WithComponent("prompt_registry").Warn("synthesis template %s is not registered", r.synthesisID)
		}
		return t, ok
	}

	return r.resolveLocked(c.Stage, c.Trigger, c.Variant())
}

// Generate resolves the template for c and renders it in the context locale.
// The boolean is false when no template matched.
func (r *Registry) Generate(c Context) (string, bool, error) {
	t, ok := r.Resolve(c)
	if !ok {
		return "", false, nil
	}
	text, err := t.Generate(c, c.EffectiveLocale())
	return text, true, err
}

// ExecuteChain runs the chain registered under id
func (r *Registry) ExecuteChain(ctx context.Context, id string, c Context, exec Executor) ([]string, error) {
	ch, err := r.Chain(id)
	if err != nil {
		return nil, err
	}
	return ch.Execute(ctx, c, exec)
}

// PreviewChain previews the chain registered under id
func (r *Registry) PreviewChain(id string, c Context) ([]string, error) {
	ch, err := r.Chain(id)
	if err != nil {
		return nil, err
	}
	return ch.Preview(c)
}
