package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"
)

// HookToken is the stable token identifying skilldock-owned hook entries
// inside a host settings document. Any hooks-array element whose command
// contains this token is governed by skilldock; everything else is user
// content and is never touched.
const HookToken = "skilldock-hook"

// ErrInvalidSettings is returned when an existing settings document cannot
// be parsed. The merger never guesses and never overwrites such a file.
var ErrInvalidSettings = errors.New("existing settings document is not valid JSON")

// HookRegistration is one governed entry under the settings "hooks" key.
type HookRegistration struct {
	Event   string // host event name, e.g. "PreToolUse"
	Matcher string // optional tool matcher
	Command string // shim invocation; must contain HookToken
}

// hookGroup mirrors the host's hook group shape:
// {"matcher": "Bash", "hooks": [{"type": "command", "command": "..."}]}.
type hookGroup struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []hookEntry `json:"hooks"`
}

type hookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// MergeHookSettings merges skilldock's governed hook registrations into an
// existing host settings document. Object keys are merged recursively via
// JSON patches against the parsed AST, so sibling keys (permissions, env,
// user hooks) survive untouched, including comments when the document is
// JSONC and jsonc is true. Re-merging an already-merged document yields the
// same document.
func MergeHookSettings(existing []byte, regs []HookRegistration, jsonc bool) ([]byte, error) {
	if len(existing) == 0 {
		existing = []byte("{}")
	}

	root, err := hujson.Parse(existing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if _, err := standardizedDoc(root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if root.Find("/hooks") == nil {
		if err := patch(&root, `[{"op":"add","path":"/hooks","value":{}}]`); err != nil {
			return nil, fmt.Errorf("creating hooks key: %w", err)
		}
	}

	for _, reg := range regs {
		group := hookGroup{
			Matcher: reg.Matcher,
			Hooks:   []hookEntry{{Type: "command", Command: reg.Command}},
		}
		groupJSON, err := json.Marshal(group)
		if err != nil {
			return nil, fmt.Errorf("marshaling hook group: %w", err)
		}

		eventPtr := "/hooks/" + jsonPointerEscape(reg.Event)
		if root.Find(eventPtr) == nil {
			if err := patch(&root, fmt.Sprintf(`[{"op":"add","path":%q,"value":[]}]`, eventPtr)); err != nil {
				return nil, fmt.Errorf("creating event %s: %w", reg.Event, err)
			}
		}

		// Replace-or-append by token: replace the first governed element,
		// append when none exists. Ungoverned elements keep their order.
		// The snapshot is taken fresh per registration so earlier structural
		// patches are reflected in the index lookup.
		doc, err := standardizedDoc(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		idx := governedIndex(doc, reg.Event)
		if idx >= 0 {
			if err := patch(&root, fmt.Sprintf(`[{"op":"replace","path":"%s/%d","value":%s}]`,
				eventPtr, idx, groupJSON)); err != nil {
				return nil, fmt.Errorf("replacing hook entry for %s: %w", reg.Event, err)
			}
		} else {
			if err := patch(&root, fmt.Sprintf(`[{"op":"add","path":"%s/-","value":%s}]`,
				eventPtr, groupJSON)); err != nil {
				return nil, fmt.Errorf("appending hook entry for %s: %w", reg.Event, err)
			}
		}
	}

	return finalize(&root, jsonc), nil
}

// RemoveHookSettings removes every skilldock-governed entry from the
// document, dropping event arrays (and the hooks object) that end up empty
// because only skilldock used them. All other content is preserved.
func RemoveHookSettings(existing []byte, jsonc bool) ([]byte, error) {
	if len(existing) == 0 {
		return existing, nil
	}

	root, err := hujson.Parse(existing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	doc, err := standardizedDoc(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	hooks, ok := doc["hooks"].(map[string]any)
	if !ok {
		return existing, nil
	}

	for event, raw := range hooks {
		groups, ok := raw.([]any)
		if !ok {
			continue
		}
		eventPtr := "/hooks/" + jsonPointerEscape(event)

		// Remove governed elements back to front so indices stay valid.
		removed := 0
		for i := len(groups) - 1; i >= 0; i-- {
			if !groupIsGoverned(groups[i]) {
				continue
			}
			if err := patch(&root, fmt.Sprintf(`[{"op":"remove","path":"%s/%d"}]`, eventPtr, i)); err != nil {
				return nil, fmt.Errorf("removing hook entry for %s: %w", event, err)
			}
			removed++
		}
		if removed > 0 && removed == len(groups) {
			if err := patch(&root, fmt.Sprintf(`[{"op":"remove","path":%q}]`, eventPtr)); err != nil {
				return nil, fmt.Errorf("removing event %s: %w", event, err)
			}
		}
	}

	// Drop the hooks object itself when nothing is left in it.
	if after, err := standardizedDoc(root); err == nil {
		if h, ok := after["hooks"].(map[string]any); ok && len(h) == 0 {
			if err := patch(&root, `[{"op":"remove","path":"/hooks"}]`); err != nil {
				return nil, fmt.Errorf("removing hooks key: %w", err)
			}
		}
	}

	return finalize(&root, jsonc), nil
}

// HasHookRegistration reports whether the document contains a governed
// entry for the given event. Parse failures report false.
func HasHookRegistration(existing []byte, event string) bool {
	root, err := hujson.Parse(existing)
	if err != nil {
		return false
	}
	doc, err := standardizedDoc(root)
	if err != nil {
		return false
	}
	return governedIndex(doc, event) >= 0
}

// standardizedDoc clones the AST, strips JSONC extensions, and decodes it
// into a generic map for inspection. The original AST is left untouched.
func standardizedDoc(root hujson.Value) (map[string]any, error) {
	v := root.Clone()
	v.Standardize()
	var doc map[string]any
	if err := json.Unmarshal(v.Pack(), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// governedIndex returns the index of the first skilldock-governed element
// in the event's hooks array, or -1.
func governedIndex(doc map[string]any, event string) int {
	if doc == nil {
		return -1
	}
	hooks, ok := doc["hooks"].(map[string]any)
	if !ok {
		return -1
	}
	groups, ok := hooks[event].([]any)
	if !ok {
		return -1
	}
	for i, g := range groups {
		if groupIsGoverned(g) {
			return i
		}
	}
	return -1
}

// groupIsGoverned checks whether any command in a raw hook group carries
// the skilldock token.
func groupIsGoverned(raw any) bool {
	group, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	entries, ok := group["hooks"].([]any)
	if !ok {
		return false
	}
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if cmd, ok := entry["command"].(string); ok && strings.Contains(cmd, HookToken) {
			return true
		}
	}
	return false
}

func patch(root *hujson.Value, p string) error {
	return root.Patch([]byte(p))
}

// finalize formats the AST and produces the output bytes. Strict-JSON
// documents are standardized; JSONC documents keep their comments.
func finalize(root *hujson.Value, jsonc bool) []byte {
	root.Format()
	removeTrailingCommas(root)
	if !jsonc {
		root.Standardize()
	}
	return root.Pack()
}

// jsonPointerEscape escapes a string for use as a JSON Pointer token (RFC 6901).
func jsonPointerEscape(s string) string {
	result := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '~':
			result = append(result, '~', '0')
		case '/':
			result = append(result, '~', '1')
		default:
			result = append(result, s[i])
		}
	}
	return string(result)
}

// removeTrailingCommas walks the JSONC AST and removes trailing commas.
func removeTrailingCommas(v *hujson.Value) {
	switch vv := v.Value.(type) {
	case *hujson.Object:
		for i := range vv.Members {
			removeTrailingCommas(&vv.Members[i].Name)
			removeTrailingCommas(&vv.Members[i].Value)
		}
		if len(vv.Members) > 0 {
			vv.Members[len(vv.Members)-1].Value.AfterExtra = nil
		}
	case *hujson.Array:
		for i := range vv.Elements {
			removeTrailingCommas(&vv.Elements[i])
		}
		if len(vv.Elements) > 0 {
			vv.Elements[len(vv.Elements)-1].AfterExtra = nil
		}
	}
}
