package index

import (
	"sync"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// DefaultHistorySize is the number of save records kept.
const DefaultHistorySize = 100

// History is a bounded ring of the latest save records.
type History struct {
	mu      sync.RWMutex
	records []domain.SaveRecord
	next    int
	full    bool
}

// NewHistory creates a ring holding at most size records.
func NewHistory(size int) *History {
	if size < 1 {
		size = DefaultHistorySize
	}
	return &History{records: make([]domain.SaveRecord, size)}
}

// Add appends a record, evicting the oldest when full.
func (h *History) Add(r domain.SaveRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = r
	h.next = (h.next + 1) % len(h.records)
	if h.next == 0 {
		h.full = true
	}
}

// Recent returns records newest first.
func (h *History) Recent() []domain.SaveRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.next
	if h.full {
		n = len(h.records)
	}

	out := make([]domain.SaveRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.records)) % len(h.records)
		out = append(out, h.records[idx])
	}
	return out
}

// Len returns the number of stored records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.full {
		return len(h.records)
	}
	return h.next
}
