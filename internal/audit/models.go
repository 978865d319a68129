package audit

import "time"

// EntryStatus tints an entry for display.
type EntryStatus string

const (
	StatusInfo    EntryStatus = "info"
	StatusSuccess EntryStatus = "success"
	StatusWarning EntryStatus = "warning"
	StatusError   EntryStatus = "error"
)

// Actor labels for audit entries. There is no authenticated identity behind
// them; the label only reflects which surface recorded the action.
const (
	ActorAgent = "AI-Agent"
	ActorAdmin = "Admin-Aptic"
)

// Entry is one recorded action. Entries are append-only and kept newest-first.
type Entry struct {
	Timestamp time.Time   `json:"timestamp"`
	Actor     string      `json:"actor"`
	Action    string      `json:"action"`
	Target    string      `json:"target"`
	Status    EntryStatus `json:"status"`
}
