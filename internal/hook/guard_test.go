package hook

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

// The guard's contract is zero false negatives on the destructive and
// secret patterns, so this table is the regression record: every blocked
// shape that ever mattered stays here.
func TestEvaluateCommand(t *testing.T) {
	tests := []struct {
		command string
		blocked bool
	}{
		// Destructive deletes.
		{"rm -rf /", true},
		{"rm -fr /", true},
		{"rm -r -f /", true},
		{"rm -f -r /", true},
		{"rm -rf /*", true},
		{"rm -rf ~", true},
		{"rm -rf ~/", true},
		{"rm -rf .", true},
		{"rm -rf ./", true},
		{"rm -rf *", true},
		{"rm -Rf /", true},
		{"rm --recursive --force /", true},
		{"rm --no-preserve-root -r /tmp/x", true},
		{"sudo rm -rf /", true},
		{"/bin/rm -rf /", true},
		{"cd /tmp && rm -rf /", true},
		{"echo ok; rm -rf ~", true},
		{"FOO=1 rm -rf /", true},

		// Benign rm.
		{"rm -rf build/", false},
		{"rm -rf ./node_modules", false},
		{"rm file.txt", false},
		{"rm -r src/old", false},
		{"rm -f stale.lock", false},

		// Secret reads.
		{"cat .env", true},
		{"cat ./.env", true},
		{"cat config/.env", true},
		{"cat .env.production", true},
		{"head -n5 .env", true},
		{"tail .env.local", true},
		{"less .env", true},
		{"more .env", true},
		{"source .env", true},
		{". .env", true},
		{"echo done && cat .env", true},

		// Whitelisted env variants.
		{"cat .env.example", false},
		{"cat .env.template", false},
		{"cat .env.sample", false},
		{"cat .env.test", false},

		// Not secret reads at all.
		{"cat README.md", false},
		{"cat environment.txt", false},
		{"grep KEY .env.example", false},
		{"ls -la", false},
		{"git status", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got := EvaluateCommand(tt.command)
			if got.Blocked != tt.blocked {
				t.Errorf("EvaluateCommand(%q).Blocked = %v, want %v (reason: %s)",
					tt.command, got.Blocked, tt.blocked, got.Reason)
			}
			if got.Blocked && got.Reason == "" {
				t.Errorf("blocked verdict for %q has no reason", tt.command)
			}
		})
	}
}

func TestEvaluateCommand_DestructiveShortCircuitsSecretCheck(t *testing.T) {
	v := EvaluateCommand("rm -rf / && cat .env")
	if !v.Blocked {
		t.Fatal("expected blocked verdict")
	}
	if !strings.Contains(v.Reason, "delete") && !strings.Contains(v.Reason, "preserve-root") {
		t.Errorf("destructive check should win, got reason %q", v.Reason)
	}
}

func TestGuard_RewritesBlockedCommand(t *testing.T) {
	in := strings.NewReader(`{"hook_event_name":"PreToolUse","tool_input":{"command":"rm -rf /"}}`)
	var out bytes.Buffer

	if err := Guard(in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rewritten := gjson.GetBytes(out.Bytes(), "tool_input.command").String()
	if strings.Contains(rewritten, "rm") {
		t.Errorf("original command survived the rewrite: %q", rewritten)
	}
	if !strings.Contains(rewritten, "exit 2") {
		t.Errorf("rewritten command does not exit 2: %q", rewritten)
	}
	if !strings.Contains(rewritten, ">&2") {
		t.Errorf("rewritten command does not report on stderr: %q", rewritten)
	}
}

func TestGuard_NestedCommandShape(t *testing.T) {
	in := strings.NewReader(`{"tool_input":{"input":{"command":"cat .env"}}}`)
	var out bytes.Buffer

	if err := Guard(in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rewritten := gjson.GetBytes(out.Bytes(), "tool_input.input.command").String()
	if !strings.Contains(rewritten, "exit 2") {
		t.Errorf("nested command not rewritten: %q", out.String())
	}
}

func TestGuard_AllowedCommandProducesNoOutput(t *testing.T) {
	in := strings.NewReader(`{"tool_input":{"command":"go test ./..."}}`)
	var out bytes.Buffer

	if err := Guard(in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("allowed command produced output: %q", out.String())
	}
}

func TestGuard_InvalidEnvelope(t *testing.T) {
	in := strings.NewReader(`{not json`)
	var out bytes.Buffer
	if err := Guard(in, &out); err == nil {
		t.Fatal("expected error for invalid envelope")
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	env := &Envelope{raw: []byte(`{"tool_input":{"command":"rm   -rf\t /"}}`)}
	if got := env.Command(); got != "rm -rf /" {
		t.Errorf("Command() = %q, want %q", got, "rm -rf /")
	}
}
