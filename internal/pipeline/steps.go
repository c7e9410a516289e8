package pipeline

import (
	"path/filepath"

	"github.com/jywlabs/scaffold/internal/template"
)

// genStep is one generated file.
type genStep struct {
	prompt   string
	dir      string
	file     string
	progress string
	caption  string
}

func (s genStep) relPath() string {
	return filepath.Join(s.dir, s.file)
}

// Documents are generated first and in this order; every prompt after the
// PRD embeds the PRD text.
var docSteps = []genStep{
	{
		prompt:   template.PromptPRD,
		dir:      template.DocsDir,
		file:     template.PRDFile,
		progress: "🔄 Generating Product Requirements Document (PRD)...",
		caption:  "📄 Product Requirements Document (PRD) generated!",
	},
	{
		prompt:   template.PromptHLD,
		dir:      template.DocsDir,
		file:     template.HLDFile,
		progress: "🔄 Generating High-Level Design (HLD)...",
		caption:  "📄 High-Level Design (HLD) generated!",
	},
	{
		prompt:   template.PromptAPI,
		dir:      template.DocsDir,
		file:     template.APIFile,
		progress: "🔄 Generating API Specifications...",
		caption:  "📄 API Specifications generated!",
	},
	{
		prompt:   template.PromptDBSchema,
		dir:      template.DocsDir,
		file:     template.DBSchemaFile,
		progress: "🔄 Generating Database Schema...",
		caption:  "📄 Database Schema generated!",
	},
	{
		prompt:   template.PromptReadme,
		dir:      ".",
		file:     template.ReadmeFile,
		progress: "🔄 Generating Project README...",
		caption:  "📄 Project README generated!",
	},
}

// Code files are independent of each other; the order only keeps progress
// messages reproducible.
var codeSteps = []genStep{
	{
		prompt:   template.PromptRequirements,
		dir:      template.BackendDir,
		file:     template.RequirementsFile,
		progress: "🔄 Generating backend requirements.txt...",
		caption:  "📄 Backend requirements.txt generated!",
	},
	{
		prompt:   template.PromptPackageJSON,
		dir:      template.FrontendDir,
		file:     template.PackageJSONFile,
		progress: "🔄 Generating frontend package.json...",
		caption:  "📄 Frontend package.json generated!",
	},
	{
		prompt:   template.PromptDocker,
		dir:      template.DockerDir,
		file:     template.ComposeFile,
		progress: "🔄 Generating Docker configuration...",
		caption:  "📄 Docker configuration generated!",
	},
}

// Progress and result messages outside the generation steps.
const (
	msgPackaging  = "🔄 Creating project ZIP archive..."
	msgArchived   = "📦 Project ZIP archive created!"
	msgPublishing = "🔄 Creating GitHub repository..."
	msgReady      = "✅ Project *%s* is ready!\n\n`%s`"
	msgError      = "❌ Error generating project: %v"
	linkLabel     = "🔗 GitHub Repo"
)

// Defaults for Config.
const (
	DefaultCommandHint = "npx create-ai-app {{project_name}} --openai --auth=supabase --ui=shadcn"
	DefaultFallbackURL = "https://github.com"
)
