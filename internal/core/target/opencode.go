package target

import (
	"strings"

	"github.com/skilldock/skilldock/internal/core/bundle"
)

// convertAgentOpenCode renders the OpenCode agent format. OpenCode requires
// a mode discriminator and a tool-capability map instead of a tool list;
// both are synthesized deterministically from the source representation.
func convertAgentOpenCode(u bundle.AgentUnit, t Target) (HostFile, error) {
	fm := map[string]any{
		"description": u.Description,
		"mode":        "subagent",
	}
	if u.Model != "" {
		fm["model"] = u.Model
	}
	if len(u.Tools) > 0 {
		fm["tools"] = toolsMap(u.Tools)
	}

	data, err := renderAgentFile(fm, u.Body)
	if err != nil {
		return HostFile{}, err
	}
	return HostFile{Path: AgentPath(t, u.Name), Data: data}, nil
}

// toolsMap restructures a tool list into OpenCode's {tool: true} map.
// Keys are lowercased; yaml.v3 marshals map keys sorted, so the output is
// stable across runs.
func toolsMap(tools []string) map[string]bool {
	m := make(map[string]bool, len(tools))
	for _, tool := range tools {
		m[strings.ToLower(tool)] = true
	}
	return m
}
