package domain

import "time"

// SaveKind identifies which trigger started a save pipeline.
type SaveKind string

const (
	SaveAutosave SaveKind = "autosave"
	SaveForce    SaveKind = "force"
)

// LogTag is the diagnostic prefix written before a save begins.
func (k SaveKind) LogTag() string {
	if k == SaveAutosave {
		return "[IDLE SAVE]"
	}
	return "[FORCE SAVE]"
}

// SaveRecord describes one finished pipeline run.
// It exists for diagnostics only; the bookmark store is the source of truth.
type SaveRecord struct {
	Kind       SaveKind  `json:"kind"`
	Title      string    `json:"title,omitempty"`
	FolderID   string    `json:"folderId,omitempty"`
	Tabs       int       `json:"tabs"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Err        string    `json:"error,omitempty"`
}

// OK reports whether the save completed.
func (r SaveRecord) OK() bool {
	return r.Err == ""
}
