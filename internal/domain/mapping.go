package domain

import "time"

// FolderMapping binds a stable folder key (e.g. "autosave:2026-10-19")
// to the store id of the folder currently holding that save.
type FolderMapping struct {
	Key       string    `json:"key"`
	FolderID  string    `json:"folderId"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}
