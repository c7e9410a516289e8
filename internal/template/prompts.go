package template

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompt template names expected in the prompts file.
const (
	PromptPRD          = "prd_prompt"
	PromptHLD          = "hld_prompt"
	PromptAPI          = "api_prompt"
	PromptDBSchema     = "dbschema_prompt"
	PromptReadme       = "readme_prompt"
	PromptRequirements = "requirements_prompt"
	PromptPackageJSON  = "packagejson_prompt"
	PromptDocker       = "docker_prompt"
)

// RequiredPrompts lists every template the pipeline renders.
var RequiredPrompts = []string{
	PromptPRD,
	PromptHLD,
	PromptAPI,
	PromptDBSchema,
	PromptReadme,
	PromptRequirements,
	PromptPackageJSON,
	PromptDocker,
}

var knownPlaceholders = map[string]bool{
	KeyProjectName: true,
	KeyDescription: true,
	KeyPRD:         true,
}

// Prompts is a validated set of named prompt templates.
type Prompts map[string]string

// LoadPrompts reads prompt templates from a YAML file.
// An empty path selects the embedded defaults.
func LoadPrompts(path string) (Prompts, error) {
	data := []byte(DefaultPrompts)
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompts: %w", err)
		}
	}
	return ParsePrompts(data)
}

// ParsePrompts decodes and validates YAML prompt templates.
func ParsePrompts(data []byte) (Prompts, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	p := Prompts(raw)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports missing templates and unknown placeholders.
func (p Prompts) Validate() error {
	var problems []string
	for _, name := range RequiredPrompts {
		if strings.TrimSpace(p[name]) == "" {
			problems = append(problems, fmt.Sprintf("missing template %q", name))
		}
	}
	for _, name := range p.Names() {
		for _, key := range Placeholders(p[name]) {
			if !knownPlaceholders[key] {
				problems = append(problems, fmt.Sprintf("template %q uses unknown placeholder {{%s}}", name, key))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid prompts: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Render interpolates the named template. The name must exist; Validate
// guarantees that for every required template.
func (p Prompts) Render(name string, values map[string]string) (string, error) {
	tmpl, ok := p[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
	return Interpolate(tmpl, values), nil
}

// Names returns the template names in sorted order.
func (p Prompts) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
