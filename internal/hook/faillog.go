package hook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// failureLogPath is where session-error events are appended, relative to
// the project root.
const failureLogPath = ".skilldock/failures.jsonl"

// failureRecord is one line in the failure log.
type failureRecord struct {
	Timestamp string          `json:"timestamp"`
	Event     string          `json:"event"`
	Props     json.RawMessage `json:"props,omitempty"`
}

// LogFailure appends one JSON line describing a session-error event to the
// local failure log, creating parent directories as needed. It is strictly
// best-effort: every I/O failure is swallowed so the host never sees an
// error from this path.
func LogFailure(root, event string, props json.RawMessage) {
	record := failureRecord{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Event:     event,
		Props:     props,
	}
	line, err := json.Marshal(record)
	if err != nil {
		return
	}

	logPath := filepath.Join(root, filepath.FromSlash(failureLogPath))
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	_, _ = f.Write(append(line, '\n'))
}
