package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the review state of a staged torrent
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// AllStatuses lists every status in display order
var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Title returns the capitalized display name ("Pending")
func (s Status) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseStatus converts user input into a Status (case-insensitive)
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Action is a status transition requested by the operator
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Target returns the status an action moves a torrent into
func (a Action) Target() Status {
	if a == ActionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Title returns the capitalized verb ("Approve")
func (a Action) Title() string {
	return Status(a).Title()
}

// PastTense returns "Approved" or "Rejected" for messages
func (a Action) PastTense() string {
	return a.Target().Title()
}

// Torrent is the read-only projection of a staged torrent served by the
// curator API. It is created and mutated only by the backend.
type Torrent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Size        int64  `json:"size"`
	MatchReason string `json:"match_reason"`
	Status      Status `json:"status"`
	Link        string `json:"link,omitempty"`
}

// Activity records an approve/reject performed from this console
type Activity struct {
	TorrentID string    `json:"torrent_id"`
	Title     string    `json:"title"`
	Action    Action    `json:"action"`
	At        time.Time `json:"at"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
}

// Preferences is the dashboard state restored on the next launch
type Preferences struct {
	Filter      Status `json:"filter"`
	AutoRefresh bool   `json:"auto_refresh"`
}
