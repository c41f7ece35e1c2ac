package tui

import (
	"github.com/mmcdole/curator/internal/dashboard"
	"github.com/mmcdole/curator/internal/domain"
)

// Message types for the TUI

// StateChangedMsg signals that the controller state changed
type StateChangedMsg struct{}

// CommandDoneMsg signals that a controller command returned
type CommandDoneMsg struct {
	Name string
}

// BulkDoneMsg carries the outcome of a bulk action
type BulkDoneMsg struct {
	Action domain.Action
	Result dashboard.BulkResult
}

// ToastExpiredMsg signals that the oldest toast may have lapsed
type ToastExpiredMsg struct{}

// pendingAction is an action waiting for y/n confirmation
type pendingAction struct {
	action domain.Action
	id     string // empty for bulk actions
	title  string
	count  int
}
