package hook

import (
	"fmt"
	"io"
)

// Run dispatches one bridge invocation. The event argument comes from the
// deployed shim; in carries the host envelope and out receives the
// response, if any.
func Run(event string, in io.Reader, out io.Writer) error {
	switch event {
	case "guard":
		return Guard(in, out)

	case "session-start":
		env, err := ReadEnvelope(in)
		if err != nil {
			return nil // degrade to no injection
		}
		inj := Injector{Root: rootOf(env)}
		return RespondContext(out, "SessionStart", inj.SessionContext())

	case "compact":
		env, err := ReadEnvelope(in)
		if err != nil {
			return nil
		}
		inj := Injector{Root: rootOf(env)}
		return RespondContext(out, "PreCompact", inj.CompactContext())

	case "session-error":
		env, err := ReadEnvelope(in)
		if err != nil {
			return nil
		}
		LogFailure(rootOf(env), env.Event(), env.Raw())
		return nil

	default:
		return fmt.Errorf("unknown hook event %q", event)
	}
}

func rootOf(env *Envelope) string {
	if cwd := env.CWD(); cwd != "" {
		return cwd
	}
	return "."
}
