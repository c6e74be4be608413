package target

import (
	"fmt"

	"github.com/skilldock/skilldock/internal/core/bundle"
)

// maxCodexDescription is the hard ceiling Codex enforces on the folded
// single-line form of an agent description.
const maxCodexDescription = 1024

// convertAgentCodex renders the Codex agent format. The description is
// folded to a single line; exceeding the ceiling is a SchemaViolation,
// never a silent truncation.
func convertAgentCodex(u bundle.AgentUnit, t Target) (HostFile, error) {
	folded := foldLine(u.Description)
	if len(folded) > maxCodexDescription {
		return HostFile{}, &SchemaViolation{
			Unit: u.Name,
			Constraint: fmt.Sprintf("description is %d characters after folding; Codex allows at most %d",
				len(folded), maxCodexDescription),
		}
	}

	fm := map[string]any{
		"name":        u.Name,
		"description": folded,
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
