package domain

// Server lifecycle states as reported by the process backend.
const (
	StatusStopped  = "stopped"
	StatusStarting = "starting"
	StatusRunning  = "running"
	StatusStopping = "stopping"
)

// Control actions accepted by the process backend.
const (
	ActionStart     = "start"
	ActionStop      = "stop"
	ActionRestart   = "restart"
	ActionForceStop = "force-stop"
)

type PlayerCount struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

// ServerSummary mirrors one managed server instance. The backend owns the
// authoritative copy; the panel refreshes its mirror on a fixed interval.
type ServerSummary struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	MOTD    string      `json:"motd"`
	Status  string      `json:"status"`
	Players PlayerCount `json:"players"`
	Version string      `json:"version"`
	Port    string      `json:"port"`
}

// IsActive reports whether the server occupies its port or is about to.
func (s ServerSummary) IsActive() bool {
	return s.Status != StatusStopped
}

type HostStats struct {
	CPU  float64 `json:"cpu"`
	RAM  uint64  `json:"ram"`
	Disk uint64  `json:"disk"`
}
