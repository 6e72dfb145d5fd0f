package catalog

import (
	"sort"
	"strings"

	"github.com/killallgit/stagewise/pkg/prompt"
)

// Names of the shared parts, usable from YAML definitions through include
const (
	PartProjectHeader    = "project_header"
	PartSelectedFiles    = "selected_files"
	PartSelectedPersonas = "selected_personas"
	PartCategoryFocus    = "category_focus"
	PartMethodology      = "research_methodology"
	PartPlainLanguage    = "plain_language"
	PartPreviousOutput   = "previous_output"
	PartStageResponses   = "stage_responses"
	PartOutputFormat     = "output_format"
)

var labels = map[string]prompt.Localized{
	"brand":        {"en": "Brand", "es": "Marca"},
	"project_type": {"en": "Project type", "es": "Tipo de proyecto"},
	"stage":        {"en": "Workflow stage", "es": "Etapa del flujo"},
	"personas":     {"en": "Target personas:", "es": "Perfiles objetivo:"},
	"responses":    {"en": "Findings from earlier stages:", "es": "Hallazgos de etapas anteriores:"},
}

func label(key, locale string) string {
	return labels[key].Resolve(locale)
}

// ProjectHeader lists the project attributes that are set
var ProjectHeader = prompt.Computed(PartProjectHeader, func(c prompt.Context, locale string) string {
	return prompt.KeyValueLines(": ",
		prompt.Field{Key: label("brand", locale), Value: c.Brand},
		prompt.Field{Key: label("project_type", locale), Value: c.ProjectType},
		prompt.Field{Key: label("stage", locale), Value: c.Stage},
	)
})

// SelectedFiles lists the files the user attached
var SelectedFiles = prompt.NewTemplatedPart(PartSelectedFiles, prompt.Localized{
	"en": "{{#if files}}Use the following source files:\n{{#each files}}- {{this}}\n{{/each}}{{/if}}",
	"es": "{{#if files}}Utiliza los siguientes archivos:\n{{#each files}}- {{this}}\n{{/each}}{{/if}}",
}, nil)

// SelectedPersonas lists the personas the analysis should target
var SelectedPersonas = prompt.Computed(PartSelectedPersonas, func(c prompt.Context, locale string) string {
	if len(c.SelectedPersonas) == 0 {
		return ""
	}
	return label("personas", locale) + "\n" + prompt.BulletList(c.SelectedPersonas, "- ")
})

// CategoryFocus narrows the analysis to the selected category tags
var CategoryFocus = prompt.NewTemplatedPart(PartCategoryFocus, prompt.Localized{
	"en": "{{#if categories}}Focus on these categories: {{categories}}.{{/if}}",
	"es": "{{#if categories}}Céntrate en estas categorías: {{categories}}.{{/if}}",
}, nil)

// ResearchMethodology is shown to researchers only
var ResearchMethodology = prompt.NewStaticPart(PartMethodology, prompt.Localized{
	"en": "Methodology: state your sampling assumptions, cite the source file for every claim, and flag findings with low evidence.",
	"es": "Metodología: indica tus supuestos de muestreo, cita el archivo fuente de cada afirmación y señala los hallazgos con poca evidencia.",
}, prompt.RoleResearcher)

// PlainLanguage is shown to non-researchers only
var PlainLanguage = prompt.NewStaticPart(PartPlainLanguage, prompt.Localized{
	"en": "Write for a business audience: plain language, no statistical jargon, lead with the recommendation.",
	"es": "Escribe para una audiencia de negocio: lenguaje claro, sin jerga estadística, empieza por la recomendación.",
}, prompt.RoleNonResearcher)

// PreviousOutput carries the previous chain step's result forward
var PreviousOutput = prompt.NewConditionalPart(PartPreviousOutput,
	func(c prompt.Context) bool { return c.PreviousOutput != "" },
	prompt.NewTemplatedPart(PartPreviousOutput, prompt.Localized{
		"en": "Build on the result of the previous step:\n{{previousOutput}}",
		"es": "Parte del resultado del paso anterior:\n{{previousOutput}}",
	}, nil),
	nil,
)

// StageResponses summarises results of earlier stages in stage order
var StageResponses = prompt.Computed(PartStageResponses, func(c prompt.Context, locale string) string {
	if len(c.AllStageResponses) == 0 {
		return ""
	}

	stages := make([]string, 0, len(c.AllStageResponses))
	for stage := range c.AllStageResponses {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	fields := make([]prompt.Field, 0, len(stages))
	for _, stage := range stages {
		fields = append(fields, prompt.Field{Key: "- " + stage, Value: summariseResponse(c.AllStageResponses[stage])})
	}

	body := prompt.KeyValueLines(": ", fields...)
	if body == "" {
		return ""
	}
	return label("responses", locale) + "\n" + body
})

// summariseResponse renders a stage result. A mapping with a "summary"
// field renders that field; any other mapping renders its fields as
// "key: value" pairs in key order.
func summariseResponse(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(r)
	case map[string]any:
		if s, ok := r["summary"]; ok {
			return strings.TrimSpace(prompt.Stringify(s))
		}
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			if value := strings.TrimSpace(prompt.Stringify(r[k])); value != "" {
				pairs = append(pairs, k+": "+value)
			}
		}
		return strings.Join(pairs, ", ")
	default:
		return strings.TrimSpace(prompt.Stringify(r))
	}
}

// OutputFormat closes every prompt with the expected answer shape
var OutputFormat = prompt.NewStaticPart(PartOutputFormat, prompt.Localized{
	"en": "Answer in Markdown with a short summary first, then numbered findings.",
	"es": "Responde en Markdown con un breve resumen primero y luego hallazgos numerados.",
})

// Library returns the shared parts for inclusion from definition files
func Library() []prompt.Part {
	return []prompt.Part{
		ProjectHeader,
		SelectedFiles,
		SelectedPersonas,
		CategoryFocus,
		ResearchMethodology,
		PlainLanguage,
		PreviousOutput,
		StageResponses,
		OutputFormat,
	}
}
