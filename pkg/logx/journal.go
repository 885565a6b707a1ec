package logx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// journalWriter forwards zerolog lines to the systemd journal. When no
// journal socket is present it is inert, so enabling it on a non-systemd
// host is harmless.
type journalWriter struct {
	available bool
}

func newJournalWriter() *journalWriter {
	return &journalWriter{available: journal.Enabled()}
}

func (w *journalWriter) Write(p []byte) (int, error) {
	// Default to info when WriteLevel isn't used.
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if w == nil || !w.available {
		return len(p), nil
	}

	msg := formatJournalJSON(p)
	if msg == "" {
		return len(p), nil
	}

	_ = journal.Send(msg, journalPriority(level), map[string]string{
		"SYSLOG_IDENTIFIER": "flux",
	})
	return len(p), nil
}

func journalPriority(level zerolog.Level) journal.Priority {
	switch {
	case level >= zerolog.ErrorLevel:
		return journal.PriErr
	case level == zerolog.WarnLevel:
		return journal.PriWarning
	case level == zerolog.InfoLevel:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// formatJournalJSON flattens a zerolog JSON line into "msg key=value ...".
// The journal carries its own timestamp and priority, so those fields are
// dropped.
func formatJournalJSON(p []byte) string {
	var m map[string]any
	if err := json.Unmarshal(bytesTrimSpace(p), &m); err != nil {
		// Not JSON; send raw (trimmed), but cap length.
		return truncate(strings.TrimSpace(string(p)), 2048)
	}

	msg, _ := m["message"].(string)
	if msg == "" {
		msg, _ = m["msg"].(string)
	}

	var b strings.Builder
	b.WriteString(msg)
	for k, v := range m {
		if k == "time" || k == "level" || k == "message" || k == "msg" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(truncate(fmt.Sprint(v), 256))
	}
	return truncate(b.String(), 2048)
}

func bytesTrimSpace(b []byte) []byte {
	i := 0
	j := len(b)
	for i < j && (b[i] == ' ' || b[i] == '\n' || b[i] == '\r' || b[i] == '\t') {
		i++
	}
	for j > i && (b[j-1] == ' ' || b[j-1] == '\n' || b[j-1] == '\r' || b[j-1] == '\t') {
		j--
	}
	return b[i:j]
}

func truncate(s string, maxN int) string {
	if maxN <= 0 || len(s) <= maxN {
		return s
	}
	if maxN < 10 {
		return s[:maxN]
	}
	return s[:maxN-3] + "..."
}
