package domain

import (
	"fmt"
	"strings"
)

// IdleState is the user presence state reported by idle detection.
type IdleState string

const (
	IdleActive IdleState = "active"
	IdleIdle   IdleState = "idle"
	IdleLocked IdleState = "locked"
)

// ParseIdleState converts a raw state string, case-insensitively.
func ParseIdleState(s string) (IdleState, error) {
	switch st := IdleState(strings.ToLower(strings.TrimSpace(s))); st {
	case IdleActive, IdleIdle, IdleLocked:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidIdleState, s)
	}
}

// TriggersAutosave reports whether entering this state starts an autosave.
// Every state except active does, including repeated idle reports.
func (s IdleState) TriggersAutosave() bool {
	return s != IdleActive
}
