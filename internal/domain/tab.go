package domain

// Window kinds. Only normal windows are saved.
const (
	WindowTypeNormal = "normal"
	WindowTypePopup  = "popup"
)

// Window is a browser window. Only relevant as a grouping key for tabs.
type Window struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Focused bool   `json:"focused"`
}

// Tab is an open browser tab, read at save time and never retained.
type Tab struct {
	ID       string `json:"id"`
	WindowID int64  `json:"windowId"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}
