package bundle

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// agentFrontmatter is the YAML frontmatter shape of a bundle agent file.
type agentFrontmatter struct {
	Name        string   `yaml:"name,omitempty"`
	Description string   `yaml:"description"`
	Model       string   `yaml:"model,omitempty"`
	Tools       []string `yaml:"tools,omitempty"`
}

// ParseAgentFile reads a Markdown file with YAML frontmatter and returns
// the parsed AgentUnit.
func ParseAgentFile(path string) (*AgentUnit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseAgentContent(raw, path)
}

// ParseAgentContent parses agent content from raw bytes. The source
// parameter is used only for error messages.
func ParseAgentContent(raw []byte, source string) (*AgentUnit, error) {
	content := string(raw)

	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "---") {
		return nil, fmt.Errorf("no frontmatter in %s", source)
	}

	start := strings.Index(content, "---")
	rest := content[start+3:]

	// Skip the newline after the opening delimiter.
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	} else if len(rest) > 1 && rest[0] == '\r' && rest[1] == '\n' {
		rest = rest[2:]
	}

	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, fmt.Errorf("no closing frontmatter delimiter in %s", source)
	}

	fmContent := rest[:end]
	body := rest[end+4:]

	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	} else if len(body) > 1 && body[0] == '\r' && body[1] == '\n' {
		body = body[2:]
	}

	var fm agentFrontmatter
	if err := yaml.Unmarshal([]byte(fmContent), &fm); err != nil {
		return nil, fmt.Errorf("parsing frontmatter in %s: %w", source, err)
	}

	if fm.Description == "" {
		return nil, fmt.Errorf("agent in %s missing description", source)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("agent in %s has empty body", source)
	}

	return &AgentUnit{
		Name:        fm.Name,
		Description: fm.Description,
		Model:       fm.Model,
		Tools:       fm.Tools,
		Body:        body,
	}, nil
}
