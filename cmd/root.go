package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// configFile is the --config flag shared by every command.
var configFile string

var rootCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Scaffold - project generator chat bot",
	Long: `Scaffold turns a short app description into a project scaffold:
design documents, dependency manifests, container config, a ZIP archive
and a GitHub repository.

Commands:
  serve       Run the Telegram bot
  generate    Generate one project locally and print progress
  prompts     Validate and list prompt templates
  engines     List generation engines
  config      Show the effective configuration
  cleanup     Remove old project workspaces and archives
  version     Show version info

Configuration is read from .env, ./scaffold.yaml (or --config) and
SCAFFOLD_* environment variables. TELEGRAM_BOT_TOKEN, OPENROUTER_API_KEY
and GITHUB_TOKEN are accepted as-is.

Quick Start:
  1. scaffold generate --name demo --description "a todo app" --engine echo --no-publish
  2. scaffold serve`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./scaffold.yaml)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
