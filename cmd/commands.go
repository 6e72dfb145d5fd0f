package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/stagewise/pkg/config"
	"github.com/killallgit/stagewise/pkg/llm"
	"github.com/killallgit/stagewise/pkg/logger"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered templates and chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, reg, err := setup()
		if err != nil {
			return err
		}
		defer closeLogger()

		return newController(cfg, reg).List(cmd.OutOrStdout())
	},
}

var renderFlags requestFlags

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Resolve a request to a template and print the prompt",
	Example: `  stagewise render --stage Buyers --variant unified --persona "Young parents" --file survey.pdf
  stagewise render --stage "Knowledge Base" --synthesis-project "Spring Launch"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, reg, err := setup()
		if err != nil {
			return err
		}
		defer closeLogger()

		return newController(cfg, reg).Render(cmd.OutOrStdout(), renderFlags.context(cfg))
	},
}

var previewFlags requestFlags

var previewCmd = &cobra.Command{
	Use:   "preview <chain>",
	Short: "Print every step prompt of a chain without calling a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, reg, err := setup()
		if err != nil {
			return err
		}
		defer closeLogger()

		return newController(cfg, reg).Preview(cmd.OutOrStdout(), args[0], previewFlags.context(cfg))
	},
}

var (
	runFlags  requestFlags
	runSystem string
)

var runCmd = &cobra.Command{
	Use:   "run <chain>",
	Short: "Execute a chain against the configured model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, reg, err := setup()
		if err != nil {
			return err
		}
		defer closeLogger()

		model, err := llm.NewModel(cfg)
		if err != nil {
			return err
		}
		exec := llm.NewChatExecutor(model, runSystem, llm.Timeout(cfg))

		return newController(cfg, reg).Run(cmd.Context(), cmd.OutOrStdout(), args[0], runFlags.context(cfg), exec)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.BuildSettingsPath("settings.yaml")
		}

		if _, err := config.Load(path); err != nil {
			return err
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func closeLogger() {
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing log file: %v\n", err)
	}
}

func init() {
	renderFlags.register(renderCmd, true)
	previewFlags.register(previewCmd, false)
	runFlags.register(runCmd, false)
	runCmd.Flags().StringVar(&runSystem, "system", "", "system message sent before every step")

	rootCmd.AddCommand(listCmd, renderCmd, previewCmd, runCmd, initCmd)
}
