package index

import (
	"fmt"
	"testing"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

func record(i int) domain.SaveRecord {
	return domain.SaveRecord{Kind: domain.SaveForce, Title: fmt.Sprintf("save %d", i), Tabs: i}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(3)
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
	if got := h.Recent(); len(got) != 0 {
		t.Errorf("Recent() = %v, want empty", got)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	h := NewHistory(5)
	for i := 1; i <= 3; i++ {
		h.Add(record(i))
	}

	got := h.Recent()
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d records, want 3", len(got))
	}
	for i, want := range []int{3, 2, 1} {
		if got[i].Tabs != want {
			t.Errorf("Recent()[%d].Tabs = %d, want %d", i, got[i].Tabs, want)
		}
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 7; i++ {
		h.Add(record(i))
	}

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	got := h.Recent()
	for i, want := range []int{7, 6, 5} {
		if got[i].Tabs != want {
			t.Errorf("Recent()[%d].Tabs = %d, want %d", i, got[i].Tabs, want)
		}
	}
}

func TestHistoryExactlyFull(t *testing.T) {
	h := NewHistory(2)
	h.Add(record(1))
	h.Add(record(2))

	got := h.Recent()
	if len(got) != 2 || got[0].Tabs != 2 || got[1].Tabs != 1 {
		t.Errorf("Recent() = %+v, want [2 1]", got)
	}
}

func TestHistoryDefaultSize(t *testing.T) {
	h := NewHistory(0)
	for i := range DefaultHistorySize + 10 {
		h.Add(record(i))
	}
	if h.Len() != DefaultHistorySize {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistorySize)
	}
}
