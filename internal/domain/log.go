package domain

// Log entry types emitted by the process backend console.
const (
	LogInfo    = "info"
	LogWarning = "warning"
	LogError   = "error"
	LogCommand = "command"
)

// LogEntry is one immutable console line. Timestamps are ISO-8601 strings and
// non-decreasing within one server's stream. Content may embed legacy color
// codes; the panel renders them verbatim.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Content   string `json:"content"`
}

// Key identifies an entry for deduplication.
func (e LogEntry) Key() string {
	return e.Timestamp + "\x00" + e.Content
}
