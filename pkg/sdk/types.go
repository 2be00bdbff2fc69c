package sdk

type PlayerCount struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

type Server struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	MOTD    string      `json:"motd"`
	Status  string      `json:"status"`
	Players PlayerCount `json:"players"`
	Version string      `json:"version"`
	Port    string      `json:"port"`
}

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Content   string `json:"content"`
}

// ConsolePage is the backlog response: recent entries plus the resume cursor.
type ConsolePage struct {
	Logs          []LogEntry `json:"logs"`
	LastTimestamp string     `json:"lastTimestamp"`
}

// LogBatch is the payload of one live-feed frame.
type LogBatch struct {
	Logs []LogEntry `json:"logs"`
}

type ControlResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type CommandResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ControlRequest struct {
	Action    string `json:"action"`
	RequestID string `json:"requestId,omitempty"`
}

type HostStats struct {
	CPU  float64 `json:"cpu"`
	RAM  uint64  `json:"ram"`
	Disk uint64  `json:"disk"`
}

type Settings struct {
	Theme            string `json:"theme"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
}

type CommandRecord struct {
	ID        string `json:"id"`
	ServerID  string `json:"serverId"`
	Command   string `json:"command"`
	CreatedAt string `json:"createdAt"`
}
