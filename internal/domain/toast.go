package domain

import "time"

// Severity classifies a toast
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Toast is a transient notification shown to the operator
type Toast struct {
	ID       int
	Message  string
	Severity Severity
	Expiry   time.Time
}

// Expired reports whether the toast should no longer be shown at now
func (t Toast) Expired(now time.Time) bool {
	return !now.Before(t.Expiry)
}
