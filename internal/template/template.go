package template

import (
	_ "embed"
	"regexp"
)

//go:embed prompts.yaml
var DefaultPrompts string

// Workspace layout. Every generated project shares the same directory shape.
const (
	DocsDir     = "docs"
	BackendDir  = "backend"
	FrontendDir = "frontend"
	DockerDir   = "docker"
)

// File name constants for consistent usage across the codebase.
const (
	PRDFile          = "PRD.md"
	HLDFile          = "HLD.md"
	APIFile          = "API.md"
	DBSchemaFile     = "DBSchema.md"
	ReadmeFile       = "README.md"
	RequirementsFile = "requirements.txt"
	PackageJSONFile  = "package.json"
	ComposeFile      = "docker-compose.yml"
	ArchiveExt       = ".zip"
	LogFile          = "log.txt"
)

// WorkspaceDirs returns the subdirectories created for every project.
func WorkspaceDirs() []string {
	return []string{DocsDir, BackendDir, FrontendDir, DockerDir}
}

// Recognised placeholder names.
const (
	KeyProjectName = "project_name"
	KeyDescription = "description"
	KeyPRD         = "prd"
)

var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Interpolate replaces every {{key}} in tmpl with values[key].
// Placeholders without a value are left untouched. Substituted values are
// never re-scanned, so a value containing "{{prd}}" stays literal.
func Interpolate(tmpl string, values map[string]string) string {
	if len(values) == 0 {
		return tmpl
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[2 : len(match)-2]
		if v, ok := values[key]; ok {
			return v
		}
		return match
	})
}

// Placeholders returns the distinct placeholder names used in tmpl, in order of first use.
func Placeholders(tmpl string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
