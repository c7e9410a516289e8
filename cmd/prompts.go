package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jywlabs/scaffold/internal/output"
	"github.com/jywlabs/scaffold/internal/template"
)

var promptsPath string

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Validate and list prompt templates",
	Long: `Load prompt templates, validate them and list each template with the
placeholders it uses.

Without --path the embedded defaults are used. Recognised placeholders are
{{project_name}}, {{description}} and {{prd}}.

Examples:
  scaffold prompts
  scaffold prompts --path prompts.yaml`,
	Args: cobra.NoArgs,
	RunE: runPrompts,
}

func init() {
	promptsCmd.Flags().StringVar(&promptsPath, "path", "", "Prompt templates file (YAML)")
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(cmd *cobra.Command, args []string) error {
	prompts, err := template.LoadPrompts(promptsPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := promptsPath
	if source == "" {
		source = "embedded defaults"
	}
	fmt.Fprintf(out, "%s %s\n\n", output.StyleSuccess.Render("[ok]"), source)
	for _, name := range prompts.Names() {
		placeholders := template.Placeholders(prompts[name])
		fmt.Fprintf(out, "  %-22s %s\n", output.StyleBold.Render(name),
			output.StyleMuted.Render(strings.Join(placeholders, ", ")))
	}
	return nil
}
