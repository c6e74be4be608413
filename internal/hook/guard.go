package hook

import (
	"fmt"
	"io"
	"path"
	"strings"
)

// Verdict is the guard's decision for one command.
type Verdict struct {
	Blocked bool
	Reason  string
}

// secretReaders are commands that display or evaluate file contents. An
// invocation of one of these against an env file is treated as a secret
// read.
var secretReaders = map[string]bool{
	"cat":    true,
	"head":   true,
	"tail":   true,
	"less":   true,
	"more":   true,
	"source": true,
	".":      true,
}

// envWhitelist covers env-file suffixes that by convention hold no secrets.
var envWhitelist = map[string]bool{
	"example":  true,
	"template": true,
	"sample":   true,
	"test":     true,
}

// dangerousTargets are rm targets that wipe the filesystem root, the home
// directory, the working directory, or everything the shell can glob.
var dangerousTargets = map[string]bool{
	"/":   true,
	"/*":  true,
	"//":  true,
	"~":   true,
	"~/":  true,
	"~/*": true,
	".":   true,
	"./":  true,
	"./*": true,
	"*":   true,
}

// EvaluateCommand checks a normalized shell command against the guard
// policy. The destructive-delete check runs first and short-circuits the
// secret-read check. False negatives are the failure mode this guard exists
// to prevent; blocking a benign command is acceptable.
func EvaluateCommand(command string) Verdict {
	for _, sub := range splitCommands(command) {
		if v := checkDestructiveDelete(sub); v.Blocked {
			return v
		}
	}
	for _, sub := range splitCommands(command) {
		if v := checkSecretRead(sub); v.Blocked {
			return v
		}
	}
	return Verdict{}
}

// Guard reads a tool-invocation envelope from in and, when the command is
// blocked, writes a rewritten envelope to out whose command only reports the
// rejection and exits with status 2. Allowed commands produce no output, so
// the host proceeds with the original invocation.
func Guard(in io.Reader, out io.Writer) error {
	env, err := ReadEnvelope(in)
	if err != nil {
		return err
	}
	command := env.Command()
	if command == "" {
		return nil
	}
	verdict := EvaluateCommand(command)
	if !verdict.Blocked {
		return nil
	}
	rewritten, err := env.WithCommand(blockCommand(verdict.Reason))
	if err != nil {
		return fmt.Errorf("rewriting blocked command: %w", err)
	}
	_, err = out.Write(append(rewritten, '\n'))
	return err
}

// blockCommand builds the replacement command for a blocked invocation. The
// original command body is discarded entirely.
func blockCommand(reason string) string {
	return fmt.Sprintf("echo 'skilldock guard: %s' >&2; exit 2", strings.ReplaceAll(reason, "'", ""))
}

// checkDestructiveDelete flags rm invocations that combine recursive and
// force flags against a protected target, and any rm carrying
// --no-preserve-root regardless of target.
func checkDestructiveDelete(tokens []string) Verdict {
	tokens = stripPrefixTokens(tokens)
	if len(tokens) == 0 || path.Base(tokens[0]) != "rm" {
		return Verdict{}
	}

	var recursive, force bool
	var targets []string
	for _, tok := range tokens[1:] {
		switch {
		case tok == "--no-preserve-root":
			return Verdict{Blocked: true, Reason: "rm with --no-preserve-root is never allowed"}
		case tok == "--recursive":
			recursive = true
		case tok == "--force":
			force = true
		case strings.HasPrefix(tok, "--"):
			// unrelated long flag
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			if strings.ContainsAny(tok[1:], "rR") {
				recursive = true
			}
			if strings.Contains(tok[1:], "f") {
				force = true
			}
		default:
			targets = append(targets, trimQuotes(tok))
		}
	}

	if !recursive || !force {
		return Verdict{}
	}
	for _, t := range targets {
		if dangerousTargets[t] {
			return Verdict{Blocked: true, Reason: fmt.Sprintf("recursive force delete of %q is blocked", t)}
		}
	}
	return Verdict{}
}

// checkSecretRead flags read/display/source commands whose target path ends
// in .env, except for whitelisted template-style suffixes (.env.example and
// friends).
func checkSecretRead(tokens []string) Verdict {
	tokens = stripPrefixTokens(tokens)
	if len(tokens) == 0 || !secretReaders[path.Base(tokens[0])] {
		return Verdict{}
	}
	for _, tok := range tokens[1:] {
		if strings.HasPrefix(tok, "-") {
			continue
		}
		target := trimQuotes(tok)
		if isSecretEnvPath(target) {
			return Verdict{Blocked: true, Reason: fmt.Sprintf("reading %q may expose secrets", target)}
		}
	}
	return Verdict{}
}

// isSecretEnvPath reports whether a path names an env file that is not one
// of the whitelisted non-secret variants.
func isSecretEnvPath(p string) bool {
	base := path.Base(p)
	if base == ".env" {
		return true
	}
	suffix, ok := strings.CutPrefix(base, ".env.")
	if !ok {
		return false
	}
	return !envWhitelist[suffix]
}

// splitCommands breaks a command line into sub-commands at shell control
// operators, then each sub-command into fields. Quoting is not interpreted;
// over-splitting only makes the guard stricter.
func splitCommands(command string) [][]string {
	replacer := strings.NewReplacer("&&", "\n", "||", "\n", ";", "\n", "|", "\n", "&", "\n")
	var subs [][]string
	for _, line := range strings.Split(replacer.Replace(command), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			subs = append(subs, fields)
		}
	}
	return subs
}

// stripPrefixTokens skips env assignments and privilege/command wrappers so
// the real program name lands at index 0.
func stripPrefixTokens(tokens []string) []string {
	for len(tokens) > 0 {
		tok := tokens[0]
		switch {
		case strings.Contains(tok, "=") && !strings.HasPrefix(tok, "-"):
			tokens = tokens[1:]
		case tok == "sudo" || tok == "command" || tok == "env" || tok == "nohup":
			tokens = tokens[1:]
		default:
			return tokens
		}
	}
	return tokens
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"'`)
}
