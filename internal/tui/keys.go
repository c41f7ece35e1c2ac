package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up         key.Binding
	Down       key.Binding
	NextFilter key.Binding
	PrevFilter key.Binding
	Pending    key.Binding
	Approved   key.Binding
	Rejected   key.Binding

	// Actions
	Select      key.Binding
	SelectAll   key.Binding
	Approve     key.Binding
	Reject      key.Binding
	BulkApprove key.Binding
	BulkReject  key.Binding
	Open        key.Binding
	Refresh     key.Binding
	AutoRefresh key.Binding
	Filter      key.Binding
	Dismiss     key.Binding
	Quit        key.Binding
	Help        key.Binding
	Escape      key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next status"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("S-tab", "previous status"),
		),
		Pending: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "pending"),
		),
		Approved: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "approved"),
		),
		Rejected: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "rejected"),
		),

		// Actions
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "select all"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),
		BulkApprove: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "approve selected"),
		),
		BulkReject: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "reject selected"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open link"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		AutoRefresh: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "auto-refresh"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "dismiss toast"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),

		// Confirmations
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap for the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Approve, k.Reject, k.Select, k.Refresh, k.Help}
}

// FullHelp implements help.KeyMap for the help screen
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextFilter, k.PrevFilter, k.Pending, k.Approved, k.Rejected},
		{k.Approve, k.Reject, k.Select, k.SelectAll, k.BulkApprove, k.BulkReject},
		{k.Open, k.Refresh, k.AutoRefresh, k.Filter, k.Dismiss, k.Help, k.Quit},
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
