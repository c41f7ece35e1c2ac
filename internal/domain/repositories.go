package domain

import (
	"context"
)

// TorrentRepository provides access to the curator API
type TorrentRepository interface {
	// ListTorrents returns staged torrents; an empty status lets the backend choose
	ListTorrents(ctx context.Context, status Status) ([]Torrent, error)

	// Approve moves a pending torrent to approved
	Approve(ctx context.Context, id string) error

	// Reject moves a pending torrent to rejected
	Reject(ctx context.Context, id string) error

	// Health returns the backend's reported status string
	Health(ctx context.Context) (string, error)
}

// HistoryRecorder persists the outcome of operator actions
type HistoryRecorder interface {
	Record(activity Activity) error
}

// PreferenceStore persists dashboard preferences
type PreferenceStore interface {
	SavePreferences(prefs Preferences) error
}
