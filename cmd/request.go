package cmd

import (
	"github.com/killallgit/stagewise/pkg/config"
	"github.com/killallgit/stagewise/pkg/prompt"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// requestFlags collects the prompt context from command line flags
type requestFlags struct {
	stage       string
	trigger     string
	variants    []string
	role        string
	locale      string
	brand       string
	projectType string
	files       []string
	personas    []string
	categories  []string
	attributes  map[string]string

	synthesisProjects   []string
	synthesisStages     []string
	synthesisExecutions []string
}

func (f *requestFlags) register(cmd *cobra.Command, withTarget bool) {
	flags := cmd.Flags()
	if withTarget {
		flags.StringVar(&f.stage, "stage", "", "workflow stage, e.g. \"Knowledge Base\"")
		flags.StringVar(&f.trigger, "trigger", prompt.TriggerExecute, "stage trigger")
		flags.StringSliceVar(&f.variants, "variant", nil, "request variants")
	}
	flags.StringVar(&f.role, "role", "", "user role (default from config)")
	flags.StringVar(&f.locale, "locale", "", "output locale (default from config)")
	flags.StringVar(&f.brand, "brand", "", "project brand")
	flags.StringVar(&f.projectType, "project-type", "", "project type")
	flags.StringSliceVar(&f.files, "file", nil, "selected source files")
	flags.StringSliceVar(&f.personas, "persona", nil, "selected personas")
	flags.StringSliceVar(&f.categories, "category", nil, "category tags")
	flags.StringToStringVar(&f.attributes, "attr", nil, "extra project attributes as key=value")
	flags.StringSliceVar(&f.synthesisProjects, "synthesis-project", nil, "projects to synthesise (Knowledge Base)")
	flags.StringSliceVar(&f.synthesisStages, "synthesis-stage", nil, "stages to synthesise (Knowledge Base)")
	flags.StringSliceVar(&f.synthesisExecutions, "synthesis-execution", nil, "execution ids to synthesise (Knowledge Base)")
}

// context builds the prompt context, filling role and locale from cfg
func (f *requestFlags) context(cfg *config.Config) prompt.Context {
	c := prompt.Context{
		Stage:            f.stage,
		Trigger:          f.trigger,
		Variants:         f.variants,
		Brand:            f.brand,
		ProjectType:      f.projectType,
		Role:             f.role,
		Locale:           f.locale,
		SelectedFiles:    f.files,
		SelectedPersonas: f.personas,
		CategoryTags:     f.categories,
	}

	if c.Role == "" && cfg != nil {
		c.Role = cfg.Prompt.DefaultRole
	}
	if c.Locale == "" && cfg != nil {
		c.Locale = cfg.Prompt.Locale
	}

	if len(f.attributes) > 0 {
		c.Attributes = make(map[string]any, len(f.attributes))
		for k, v := range f.attributes {
			c.Attributes[k] = attributeValue(v)
		}
	}

	selection := &prompt.SynthesisSelection{
		Projects:     f.synthesisProjects,
		Stages:       f.synthesisStages,
		ExecutionIDs: f.synthesisExecutions,
	}
	if selection.Populated() {
		c.Synthesis = selection
	}
	return c
}

// attributeValue keeps numbers and booleans typed so templates can test them
func attributeValue(s string) any {
	if s == "true" || s == "false" {
		return s == "true"
	}
	if n, err := cast.ToInt64E(s); err == nil {
		return n
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		return f
	}
	return s
}
