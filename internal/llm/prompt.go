// Package llm builds review prompts and talks to the AI endpoint.
package llm

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/criticdev/gh-critic/internal/core"
)

//go:embed prompts/review_default.yaml
var defaultPromptYAML []byte

// promptFile is the on-disk shape of a prompt template: a plain system
// message and a Go text/template for the user message.
type promptFile struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// promptData is what the user template gets to substitute.
type promptData struct {
	Repo        string
	Number      int
	Title       string
	Description string
	Files       string
	Diff        string
}

// PromptTemplate renders the system and user messages for a review.
type PromptTemplate struct {
	system string
	user   *template.Template
}

// LoadPromptTemplate reads a prompt template from path, or the embedded
// default when path is empty. A path that cannot be read or parsed is a
// configuration error; there is no silent fallback.
func LoadPromptTemplate(path string) (*PromptTemplate, error) {
	if path == "" {
		return parsePromptTemplate(defaultPromptYAML, "embedded default")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt file %s: %w", path, err)
	}
	return parsePromptTemplate(data, path)
}

func parsePromptTemplate(data []byte, name string) (*PromptTemplate, error) {
	var pf promptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing prompt template %s: %w", name, err)
	}
	if strings.TrimSpace(pf.System) == "" {
		return nil, fmt.Errorf("prompt template %s: system message is empty", name)
	}
	if strings.TrimSpace(pf.User) == "" {
		return nil, fmt.Errorf("prompt template %s: user template is empty", name)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(pf.User)
	if err != nil {
		return nil, fmt.Errorf("parsing user template in %s: %w", name, err)
	}

	return &PromptTemplate{system: pf.System, user: tmpl}, nil
}

// Render produces the system and user messages for one pull request.
func (p *PromptTemplate) Render(ref core.PullRequestRef, data *core.PullRequestData) (system, user string, err error) {
	paths := make([]string, 0, len(data.Files))
	for _, f := range data.Files {
		paths = append(paths, f.Path)
	}

	var buf bytes.Buffer
	err = p.user.Execute(&buf, promptData{
		Repo:        ref.FullName(),
		Number:      ref.Number,
		Title:       data.Title,
		Description: data.Description,
		Files:       strings.Join(paths, "\n"),
		Diff:        data.Diff,
	})
	if err != nil {
		return "", "", fmt.Errorf("rendering user prompt: %w", err)
	}

	return p.system, buf.String(), nil
}
