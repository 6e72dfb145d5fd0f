package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/stagewise/pkg/catalog"
	"github.com/killallgit/stagewise/pkg/config"
	"github.com/killallgit/stagewise/pkg/controllers"
	"github.com/killallgit/stagewise/pkg/logger"
	"github.com/killallgit/stagewise/pkg/prompt"
	"github.com/killallgit/stagewise/pkg/tokens"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	countTokens bool
)

var rootCmd = &cobra.Command{
	Use:   "stagewise",
	Short: "Compose prompts for staged workflows",
	Long: `Stagewise resolves workflow requests (stage, trigger, variant) to prompt
templates, renders them for a role and locale, and previews or runs
multi-step prompt chains against a language model.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .stagewise/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().BoolVar(&countTokens, "tokens", false, "show token counts for rendered prompts")

	rootCmd.PersistentFlags().String("templates", "", "directory of extra template definitions")
	viper.BindPFlag("prompt.template_dir", rootCmd.PersistentFlags().Lookup("templates"))
}

// setup loads configuration, starts logging and builds the populated registry
func setup() (*config.Config, *prompt.Registry, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return nil, nil, err
	}

	reg := prompt.NewRegistry()
	if err := catalog.Register(reg); err != nil {
		return nil, nil, err
	}
	if err := catalog.RegisterDir(reg, cfg.Prompt.TemplateDir); err != nil {
		return nil, nil, err
	}

	logger.Info("registry ready: %d templates, %d chains", len(reg.ListTemplates()), len(reg.ListChains()))
	return cfg, reg, nil
}

func newController(cfg *config.Config, reg *prompt.Registry) *controllers.PromptsController {
	pc := controllers.NewPromptsController(reg, cfg.Prompt.Placeholder)
	if countTokens {
		pc.WithTokenCounter(tokenCounter(cfg))
	}
	return pc
}

// tokenCounter uses the configured model's encoding, or an estimate when
// the encoding cannot be loaded
func tokenCounter(cfg *config.Config) *tokens.Counter {
	model := cfg.Ollama.Model
	if cfg.Provider == "openai" {
		model = cfg.OpenAI.Model
	}

	counter, err := tokens.NewCounter(model)
	if err != nil {
		logger.Warn("token encoding unavailable, estimating: %v", err)
		return tokens.NewEstimator()
	}
	return counter
}
