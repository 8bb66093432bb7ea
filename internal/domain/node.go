package domain

import "time"

// NodeType distinguishes folders from bookmark entries in the bookmark store.
type NodeType string

const (
	NodeFolder   NodeType = "folder"
	NodeBookmark NodeType = "bookmark"
)

// Node is a single item of the bookmark store: either a folder or a bookmark entry.
//
// Nodes are created by tabsaver and are owned by the store afterwards.
// They are never updated; the only removal is the forced emptying of
// an autosave folder.
type Node struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque store identifier.
	ID string `json:"id"`

	// ParentID is the containing folder. Empty only for the store root.
	ParentID string `json:"parentId,omitempty"`

	// Type is folder or bookmark.
	Type NodeType `json:"type"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// Title is matched exactly by folder resolution.
	Title string `json:"title"`

	// URL is empty for folders.
	URL string `json:"url,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is the time the store accepted the node.
	CreatedAt time.Time `json:"createdAt"`
}

// IsFolder reports whether the node is a folder.
func (n Node) IsFolder() bool {
	return n.Type == NodeFolder
}
