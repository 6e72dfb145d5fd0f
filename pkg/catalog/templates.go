package catalog

import (
	"github.com/killallgit/stagewise/pkg/prompt"
)

// Workflow stages with built-in templates
const (
	StageBuyers        = "Buyers"
	StageLaunch        = "Launch"
	StageKnowledgeBase = prompt.KnowledgeBaseStage
)

// Variants refining a stage request
const (
	VariantUnified = "unified"
	VariantAssess  = "assess"
)

func intro(name string, text prompt.Localized) prompt.Part {
	return prompt.NewTemplatedPart(name, text, nil)
}

func builtinTemplates() []*prompt.Template {
	return []*prompt.Template{
		prompt.NewTemplate(prompt.Key(StageBuyers, prompt.TriggerExecute, ""), StageBuyers, prompt.TriggerExecute,
			intro("buyers_intro", prompt.Localized{
				"en": "You are analysing the buyers of {{brand}}. Describe who buys, why they buy and what stops them.",
				"es": "Estás analizando a los compradores de {{brand}}. Describe quién compra, por qué compra y qué le frena.",
			}),
			ProjectHeader,
			SelectedFiles,
			SelectedPersonas,
			CategoryFocus,
			ResearchMethodology,
			PlainLanguage,
			OutputFormat,
		),

		prompt.NewTemplate(prompt.Key(StageBuyers, prompt.TriggerExecute, VariantUnified), StageBuyers, prompt.TriggerExecute,
			intro("buyers_unified_intro", prompt.Localized{
				"en": "Produce one unified buyer profile for {{brand}} that merges every selected persona into a single view.",
				"es": "Elabora un perfil de comprador unificado para {{brand}} que combine todos los perfiles seleccionados.",
			}),
			ProjectHeader,
			SelectedPersonas,
			SelectedFiles,
			prompt.NewStaticPart("buyers_unified_rules", prompt.Localized{
				"en": "Where personas disagree, keep both views and say which evidence supports each.",
				"es": "Cuando los perfiles discrepen, conserva ambas visiones e indica qué evidencia respalda cada una.",
			}),
			ResearchMethodology,
			PlainLanguage,
			OutputFormat,
		),

		prompt.NewTemplate(prompt.Key(StageLaunch, prompt.TriggerExecute, ""), StageLaunch, prompt.TriggerExecute,
			intro("launch_intro", prompt.Localized{
				"en": "Draft a launch plan for the {{projectType}} project of {{brand}}.",
				"es": "Redacta un plan de lanzamiento para el proyecto {{projectType}} de {{brand}}.",
			}),
			ProjectHeader,
			StageResponses,
			SelectedFiles,
			PreviousOutput,
			ResearchMethodology,
			PlainLanguage,
			OutputFormat,
		),

		prompt.NewTemplate(prompt.Key(StageKnowledgeBase, prompt.TriggerExecute, ""), StageKnowledgeBase, prompt.TriggerExecute,
			intro("knowledge_base_intro", prompt.Localized{
				"en": "Answer using the knowledge base of {{brand}}. Only use the material below.",
				"es": "Responde usando la base de conocimiento de {{brand}}. Usa solo el material siguiente.",
			}),
			ProjectHeader,
			SelectedFiles,
			CategoryFocus,
			OutputFormat,
		),

		prompt.NewTemplate(prompt.SynthesisTemplateID, StageKnowledgeBase, prompt.TriggerExecute,
			intro("synthesis_intro", prompt.Localized{
				"en": "Synthesise the selected earlier work into one narrative. Identify agreements, contradictions and open questions.",
				"es": "Sintetiza el trabajo previo seleccionado en una sola narrativa. Identifica acuerdos, contradicciones y preguntas abiertas.",
			}),
			prompt.NewTemplatedPart("synthesis_selection", prompt.Localized{
				"en": "{{#if synthesisProjects}}Projects: {{synthesisProjects}}\n{{/if}}{{#if synthesisStages}}Stages: {{synthesisStages}}\n{{/if}}{{#if synthesisExecutionIds}}Executions: {{synthesisExecutionIds}}{{/if}}",
				"es": "{{#if synthesisProjects}}Proyectos: {{synthesisProjects}}\n{{/if}}{{#if synthesisStages}}Etapas: {{synthesisStages}}\n{{/if}}{{#if synthesisExecutionIds}}Ejecuciones: {{synthesisExecutionIds}}{{/if}}",
			}, nil),
			StageResponses,
			ResearchMethodology,
			OutputFormat,
		),
	}
}
