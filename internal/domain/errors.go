package domain

import "errors"

var (
	// ErrNoFocusedWindow is returned when no browser window currently has focus.
	ErrNoFocusedWindow = errors.New("no focused window")

	// ErrNotFound is returned by stores when an id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidIdleState is returned for states outside active/idle/locked.
	ErrInvalidIdleState = errors.New("invalid idle state")
)
