// Package prompt composes AI prompts for staged business workflows.
//
// A Template is an ordered list of Parts. Each part renders text for a
// Context and locale, and may be restricted to a set of roles:
//
//	t := prompt.NewTemplate("launch_execute", "Launch", prompt.TriggerExecute,
//	    prompt.NewStaticPart("intro", prompt.Text("You are planning a launch.")),
//	    prompt.NewTemplatedPart("files", prompt.Text(
//	        "{{#if files}}Files:\n{{#each files}}- {{this}}\n{{/each}}{{/if}}"), nil),
//	    prompt.NewStaticPart("method", prompt.Text("Cite sources."), prompt.RoleResearcher),
//	)
//
//	text, err := t.Generate(prompt.Context{SelectedFiles: []string{"a.pdf"}}, "en")
//
// Templated parts use a small placeholder language applied in fixed passes:
// each blocks, then if blocks, then unless blocks, then plain {{name}}
// substitution. Missing names render as empty.
//
// A Registry resolves a request to a template by stage, trigger and variant,
// falling back to stage and trigger when the variant is unknown. Chains run
// templates in sequence, threading each result into the next step:
//
//	reg := prompt.NewRegistry()
//	reg.MustRegisterTemplate(t)
//	if tmpl, ok := reg.Resolve(ctx); ok {
//	    text, _ := tmpl.Generate(ctx, ctx.EffectiveLocale())
//	}
//
//	results, err := reg.ExecuteChain(goCtx, "launch_plan", ctx, exec)
//	previews, err := reg.PreviewChain("launch_plan", ctx)
//
// Templates and chains can also be declared in YAML and loaded with a Loader.
// Formatter, ChatFormatter and LangChain adapt templates and chains to the
// langchaingo prompts and chains interfaces.
package prompt
