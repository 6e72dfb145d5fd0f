package prompt

import (
	"maps"
	"slices"
	"strings"
)

// SynthesisSelection narrows a Knowledge Base request to a set of earlier work
type SynthesisSelection struct {
	Projects     []string `json:"projects,omitempty" yaml:"projects,omitempty"`
	Stages       []string `json:"stages,omitempty" yaml:"stages,omitempty"`
	ExecutionIDs []string `json:"execution_ids,omitempty" yaml:"execution_ids,omitempty"`
}

// Populated reports whether any selection list is non-empty
func (s *SynthesisSelection) Populated() bool {
	return s != nil && (len(s.Projects) > 0 || len(s.Stages) > 0 || len(s.ExecutionIDs) > 0)
}

// Context is the per-invocation input to prompt generation.
//
// A Context is treated as a value: chain steps derive new contexts with
// WithStepResult and never modify the one they were given.
type Context struct {
	Stage    string   `json:"stage" yaml:"stage"`
	Trigger  string   `json:"trigger" yaml:"trigger"`
	Variants []string `json:"variants,omitempty" yaml:"variants,omitempty"`

	Brand       string         `json:"brand,omitempty" yaml:"brand,omitempty"`
	ProjectType string         `json:"project_type,omitempty" yaml:"project_type,omitempty"`
	Role        string         `json:"role,omitempty" yaml:"role,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	SelectedFiles    []string `json:"selected_files,omitempty" yaml:"selected_files,omitempty"`
	SelectedPersonas []string `json:"selected_personas,omitempty" yaml:"selected_personas,omitempty"`
	CategoryTags     []string `json:"category_tags,omitempty" yaml:"category_tags,omitempty"`

	Synthesis *SynthesisSelection `json:"synthesis,omitempty" yaml:"synthesis,omitempty"`

	// Chain-carry fields
	PreviousOutput    string         `json:"previous_output,omitempty" yaml:"previous_output,omitempty"`
	ChainResults      []string       `json:"chain_results,omitempty" yaml:"chain_results,omitempty"`
	AllStageResponses map[string]any `json:"all_stage_responses,omitempty" yaml:"all_stage_responses,omitempty"`

	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// EffectiveRole returns the context role, or DefaultRole when unset
func (c Context) EffectiveRole() string {
	if strings.TrimSpace(c.Role) == "" {
		return DefaultRole
	}
	return c.Role
}

// EffectiveLocale returns the context locale, or DefaultLocale when unset
func (c Context) EffectiveLocale() string {
	if c.Locale == "" {
		return DefaultLocale
	}
	return c.Locale
}

// HasSynthesis reports whether the context carries a populated synthesis selection
func (c Context) HasSynthesis() bool {
	return c.Synthesis.Populated()
}

// Variant joins the context variants into the tag used by the resolver
func (c Context) Variant() string {
	parts := make([]string, 0, len(c.Variants))
	for _, v := range c.Variants {
		if v = normalizeKey(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "_")
}

// Attribute returns a free-form project attribute, or nil
func (c Context) Attribute(name string) any {
	if c.Attributes == nil {
		return nil
	}
	return c.Attributes[name]
}

// WithStepResult derives the context for the next chain step: result becomes
// PreviousOutput and is appended to a copy of ChainResults.
func (c Context) WithStepResult(result string) Context {
	next := c
	next.PreviousOutput = result
	next.ChainResults = append(slices.Clone(c.ChainResults), result)
	return next
}

// Vars flattens the context into the variable mapping used by templated parts.
// Free-form attributes are merged first so the named fields always win.
func (c Context) Vars() map[string]any {
	vars := make(map[string]any, len(c.Attributes)+16)
	maps.Copy(vars, c.Attributes)

	vars["stage"] = c.Stage
	vars["trigger"] = c.Trigger
	vars["variant"] = c.Variant()
	vars["brand"] = c.Brand
	vars["projectType"] = c.ProjectType
	vars["role"] = c.EffectiveRole()
	vars["isResearcher"] = c.EffectiveRole() == RoleResearcher
	vars["files"] = c.SelectedFiles
	vars["personas"] = c.SelectedPersonas
	vars["categories"] = c.CategoryTags
	vars["previousOutput"] = c.PreviousOutput
	vars["chainResults"] = c.ChainResults
	vars["stageResponses"] = c.AllStageResponses
	vars["locale"] = c.EffectiveLocale()

	if c.Synthesis != nil {
		vars["synthesisProjects"] = c.Synthesis.Projects
		vars["synthesisStages"] = c.Synthesis.Stages
		vars["synthesisExecutionIds"] = c.Synthesis.ExecutionIDs
	}
	vars["hasSynthesis"] = c.HasSynthesis()

	return vars
}
