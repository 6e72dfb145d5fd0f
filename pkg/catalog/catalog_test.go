package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/killallgit/stagewise/pkg/catalog"
	"github.com/killallgit/stagewise/pkg/prompt"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Suite")
}

type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, text string, step int) (string, error) {
	args := m.Called(ctx, text, step)
	return args.String(0), args.Error(1)
}

var _ = Describe("Catalog", func() {
	var reg *prompt.Registry

	BeforeEach(func() {
		reg = prompt.NewRegistry()
		Expect(catalog.Register(reg)).To(Succeed())
	})

	Describe("Register", func() {
		It("registers Go templates before embedded definitions", func() {
			Expect(reg.ListTemplates()).To(Equal([]string{
				"buyers_execute",
				"buyers_execute_unified",
				"launch_execute",
				"knowledge_base_execute",
				prompt.SynthesisTemplateID,
				"buyers_assess",
				"launch_execute_assess",
				"launch_refine",
			}))
		})

		It("registers the embedded chains", func() {
			Expect(reg.ListChains()).To(Equal([]string{"buyers_deep_dive", "launch_plan"}))

			plan, err := reg.Chain("launch_plan")
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Len()).To(Equal(3))
		})
	})

	Describe("Resolving a unified buyers request", func() {
		var c prompt.Context

		BeforeEach(func() {
			c = prompt.Context{
				Stage:            catalog.StageBuyers,
				Trigger:          prompt.TriggerExecute,
				Variants:         []string{catalog.VariantUnified},
				Role:             prompt.RoleNonResearcher,
				SelectedFiles:    []string{"a.pdf"},
				SelectedPersonas: []string{"P1"},
			}
		})

		It("renders personas and files without researcher-only parts", func() {
			tmpl, ok := reg.Resolve(c)
			Expect(ok).To(BeTrue())
			Expect(tmpl.ID).To(Equal("buyers_execute_unified"))

			out, err := tmpl.Generate(c, c.EffectiveLocale())
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(BeEmpty())
			Expect(out).To(ContainSubstring("P1"))
			Expect(out).To(ContainSubstring("a.pdf"))
			Expect(out).NotTo(ContainSubstring("Methodology:"))
			Expect(out).To(ContainSubstring("Write for a business audience"))
		})

		It("includes the methodology for researchers", func() {
			c.Role = prompt.RoleResearcher

			out, ok, err := reg.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(out).To(ContainSubstring("Methodology:"))
			Expect(out).NotTo(ContainSubstring("Write for a business audience"))
		})

		It("renders in Spanish", func() {
			c.Locale = "es-ES"

			out, _, err := reg.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Perfiles objetivo:"))
			Expect(out).To(ContainSubstring("Utiliza los siguientes archivos:"))
		})

		It("falls back to the plain stage template for unknown variants", func() {
			c.Variants = []string{"regional"}

			tmpl, ok := reg.Resolve(c)
			Expect(ok).To(BeTrue())
			Expect(tmpl.ID).To(Equal("buyers_execute"))
		})
	})

	Describe("Knowledge Base", func() {
		It("uses the synthesis template when a selection is present", func() {
			c := prompt.Context{
				Stage:   catalog.StageKnowledgeBase,
				Trigger: prompt.TriggerExecute,
				Synthesis: &prompt.SynthesisSelection{
					Projects: []string{"Spring Launch"},
					Stages:   []string{"Buyers"},
				},
				AllStageResponses: map[string]any{
					"Buyers": map[string]any{"summary": "Young urban families"},
					"Launch": "Launch in May",
				},
			}

			out, ok, err := reg.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(out).To(HavePrefix("Synthesise the selected earlier work"))
			Expect(out).To(ContainSubstring("Projects: Spring Launch"))
			Expect(out).To(ContainSubstring("Stages: Buyers"))
			Expect(out).NotTo(ContainSubstring("Executions:"))
			Expect(out).To(ContainSubstring("- Buyers: Young urban families\n- Launch: Launch in May"))
		})

		It("uses the stage template without a selection", func() {
			c := prompt.Context{Stage: catalog.StageKnowledgeBase, Trigger: prompt.TriggerExecute, Brand: "Acme"}

			out, ok, err := reg.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(out).To(HavePrefix("Answer using the knowledge base of Acme."))
		})

		It("renders stage results without a summary from their fields", func() {
			c := prompt.Context{
				Stage:             catalog.StageKnowledgeBase,
				Trigger:           prompt.TriggerExecute,
				Synthesis:         &prompt.SynthesisSelection{ExecutionIDs: []string{"run-1"}},
				AllStageResponses: map[string]any{"Buyers": map[string]any{"score": 3, "note": ""}},
			}

			out, ok, err := reg.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(out).To(ContainSubstring("Findings from earlier stages:\n- Buyers: score: 3"))
			Expect(out).To(ContainSubstring("Executions: run-1"))
		})

		It("renders launch plans from arbitrary stage results", func() {
			c := prompt.Context{
				Stage:   catalog.StageLaunch,
				Trigger: prompt.TriggerExecute,
				AllStageResponses: map[string]any{
					"Buyers":  map[string]any{"text": "buyers like it", "score": 4},
					"Pricing": nil,
				},
			}

			out, ok, err := reg.Generate(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(out).To(ContainSubstring("- Buyers: score: 4, text: buyers like it"))
			Expect(out).NotTo(ContainSubstring("Pricing"))
		})
	})

	Describe("launch_plan chain", func() {
		var c prompt.Context

		BeforeEach(func() {
			c = prompt.Context{
				Stage:       catalog.StageLaunch,
				Trigger:     prompt.TriggerExecute,
				Brand:       "Acme",
				ProjectType: "retail",
			}
		})

		It("previews every step with the placeholder", func() {
			previews, err := reg.PreviewChain("launch_plan", c)
			Expect(err).NotTo(HaveOccurred())
			Expect(previews).To(HaveLen(3))

			Expect(previews[0]).To(HavePrefix("Draft a launch plan for the retail project of Acme."))
			Expect(previews[0]).NotTo(ContainSubstring(prompt.DefaultPlaceholder))
			Expect(previews[1]).To(ContainSubstring(prompt.DefaultPlaceholder))
			Expect(previews[1]).To(ContainSubstring("This is refinement round I."))
			Expect(previews[2]).To(ContainSubstring("Assess launch readiness for Acme."))
		})

		It("threads each result into the next step", func() {
			exec := &MockExecutor{}
			exec.On("Execute", mock.Anything, mock.AnythingOfType("string"), 0).Return("DRAFT-1", nil).Once()
			exec.On("Execute", mock.Anything, mock.MatchedBy(func(s string) bool {
				return strings.Contains(s, "DRAFT-1")
			}), 1).Return("REFINED-2", nil).Once()
			exec.On("Execute", mock.Anything, mock.AnythingOfType("string"), 2).Return("SCORED-3", nil).Once()

			results, err := reg.ExecuteChain(context.Background(), "launch_plan", c, exec.Execute)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(Equal([]string{"DRAFT-1", "REFINED-2", "SCORED-3"}))
			exec.AssertExpectations(GinkgoT())

			last := exec.Calls[2].Arguments.String(1)
			Expect(last).To(ContainSubstring("REFINED-2"))
			Expect(last).NotTo(ContainSubstring("DRAFT-1"))
		})

		It("stops at the first failing step", func() {
			boom := errors.New("model unavailable")
			exec := &MockExecutor{}
			exec.On("Execute", mock.Anything, mock.Anything, 0).Return("DRAFT-1", nil).Once()
			exec.On("Execute", mock.Anything, mock.Anything, 1).Return("", boom).Once()

			results, err := reg.ExecuteChain(context.Background(), "launch_plan", c, exec.Execute)
			Expect(err).To(MatchError(boom))
			Expect(results).To(BeNil())
			exec.AssertNumberOfCalls(GinkgoT(), "Execute", 2)
		})
	})

	Describe("RegisterDir", func() {
		It("overrides built-in templates and adds chains", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(`
templates:
  - id: launch_execute
    stage: Launch
    trigger: execute
    parts:
      - name: custom_intro
        text: "Custom launch for {{brand}}."
      - include: output_format
chains:
  - id: quick_launch
    steps: [launch_execute, buyers_assess]
`), 0644)).To(Succeed())

			Expect(catalog.RegisterDir(reg, dir)).To(Succeed())

			out, ok, err := reg.Generate(prompt.Context{Stage: "Launch", Trigger: "execute", Brand: "Acme"})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(out).To(HavePrefix("Custom launch for Acme."))

			Expect(reg.ListChains()).To(ContainElement("quick_launch"))
		})

		It("ignores an empty directory setting", func() {
			Expect(catalog.RegisterDir(reg, "")).To(Succeed())
		})

		It("reports invalid definitions", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("templates:\n  - id: x\n    parts:\n      - include: nope\n"), 0644)).To(Succeed())

			err := catalog.RegisterDir(reg, dir)
			Expect(err).To(MatchError(prompt.ErrInvalidDefinition))
		})
	})
})
