package target

import "github.com/skilldock/skilldock/internal/core/bundle"

// convertAgentClaude renders the Claude Code agent format: YAML frontmatter
// with name, description, model, and a comma-joined tools line.
func convertAgentClaude(u bundle.AgentUnit, t Target) (HostFile, error) {
	fm := map[string]any{
		"name":        u.Name,
		"description": u.Description,
	}
	if u.Model != "" {
		fm["model"] = u.Model
	}
	if len(u.Tools) > 0 {
		fm["tools"] = joinTools(u.Tools)
	}

	data, err := renderAgentFile(fm, u.Body)
	if err != nil {
		return HostFile{}, err
	}
	return HostFile{Path: AgentPath(t, u.Name), Data: data}, nil
}

func joinTools(tools []string) string {
	out := ""
	for i, tool := range tools {
		if i > 0 {
			out += ", "
		}
		out += tool
	}
	return out
}
