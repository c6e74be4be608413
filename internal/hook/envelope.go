// Package hook implements the runtime bridge the installer deploys into a
// host project: command-safety filtering before shell execution, session
// context injection, and best-effort failure logging. Everything here runs
// inside the host's event loop, so handlers stay synchronous, bounded, and
// local: no network, no retries, and absence of a resource degrades to
// omission rather than an error.
package hook

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// maxEnvelopeSize bounds how much of stdin a handler will consume.
const maxEnvelopeSize = 1 << 20

// Envelope is one hook event as delivered by the host on stdin.
type Envelope struct {
	raw []byte
}

// ReadEnvelope consumes the host's JSON envelope from r.
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxEnvelopeSize))
	if err != nil {
		return nil, fmt.Errorf("reading hook envelope: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("hook envelope is not valid JSON")
	}
	return &Envelope{raw: raw}, nil
}

// Raw returns the envelope bytes as received.
func (e *Envelope) Raw() []byte { return e.raw }

// Event returns the host event name, when present.
func (e *Envelope) Event() string {
	return gjson.GetBytes(e.raw, "hook_event_name").String()
}

// CWD returns the working directory the host reports for the session.
func (e *Envelope) CWD() string {
	return gjson.GetBytes(e.raw, "cwd").String()
}

// Command extracts the shell command from the tool invocation. Hosts differ
// on nesting: some put it directly under tool_input, some wrap it one level
// deeper. Internal whitespace is normalized so pattern checks see one shape.
func (e *Envelope) Command() string {
	cmd := gjson.GetBytes(e.raw, "tool_input.command")
	if !cmd.Exists() {
		cmd = gjson.GetBytes(e.raw, "tool_input.input.command")
	}
	return normalizeWhitespace(cmd.String())
}

// WithCommand returns a copy of the envelope with the tool command replaced,
// writing to whichever nesting the original used.
func (e *Envelope) WithCommand(command string) ([]byte, error) {
	path := "tool_input.command"
	if !gjson.GetBytes(e.raw, path).Exists() && gjson.GetBytes(e.raw, "tool_input.input.command").Exists() {
		path = "tool_input.input.command"
	}
	return sjson.SetBytes(e.raw, path, command)
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
