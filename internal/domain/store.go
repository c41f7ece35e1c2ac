package domain

// Store handles local persistence (BoltDB + memory).
// Staged torrents are never stored here; only console state is.
type Store interface {
	HistoryRecorder

	LoadPreferences() (Preferences, bool)
	SavePreferences(prefs Preferences) error

	// RecentActivity returns up to limit records, newest first
	RecentActivity(limit int) ([]Activity, error)

	Close() error
}
