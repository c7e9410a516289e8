package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jywlabs/scaffold/internal/config"
	"github.com/jywlabs/scaffold/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging defaults, the config
file, .env and environment variables. Credentials are masked.

Problems that would stop 'scaffold serve' are listed after the settings.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	return printConfig(cfg, cmd.OutOrStdout())
}

func printConfig(cfg *config.Config, out io.Writer) error {
	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprint(out, string(data))

	if err := cfg.Validate(config.ModeServe); err != nil {
		fmt.Fprintf(out, "\n%s\n%v\n", output.StyleError.Render("Problems:"), err)
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(out, "\n%s %s\n", output.StyleWarning.Render("Warning:"), w)
	}
	return nil
}
