// Package catalog holds the workflow's built-in prompts: a library of shared
// parts, templates for each workflow stage and the chains that combine them.
//
// Register populates a caller-owned registry at startup:
//
//	reg := prompt.NewRegistry()
//	if err := catalog.Register(reg); err != nil {
//	    return err
//	}
//	tmpl, ok := reg.Resolve(ctx)
package catalog

import (
	"embed"
	"fmt"

	"github.com/killallgit/stagewise/pkg/logger"
	"github.com/killallgit/stagewise/pkg/prompt"
)

//go:embed templates
var definitions embed.FS

// NewLoader returns a definition loader that can include the shared parts
func NewLoader() *prompt.Loader {
	return prompt.NewLoader(prompt.WithPartLibrary(Library()...))
}

// Register adds the built-in templates and the embedded definitions to reg.
// Definitions are loaded after the Go templates so their chains can use both.
func Register(reg *prompt.Registry) error {
	for _, t := range builtinTemplates() {
		if err := reg.RegisterTemplate(t); err != nil {
			return err
		}
	}

	if err := NewLoader().LoadFS(reg, definitions, "templates/"+prompt.DefinitionPattern); err != nil {
		return fmt.Errorf("loading embedded definitions: %w", err)
	}

	logger.WithComponent("catalog").Debug("registered %d templates and %d chains",
		len(reg.ListTemplates()), len(reg.ListChains()))
	return nil
}

// RegisterDir loads additional definitions from dir. Definitions reusing an
// id replace the built-in entry.
func RegisterDir(reg *prompt.Registry, dir string) error {
	if dir == "" {
		return nil
	}
	if err := NewLoader().LoadDir(reg, dir); err != nil {
		return fmt.Errorf("loading definitions from %s: %w", dir, err)
	}
	return nil
}
