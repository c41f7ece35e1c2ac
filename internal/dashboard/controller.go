// Package dashboard holds the review console's state and the operations an
// operator performs on it. It knows nothing about rendering; views read a
// Snapshot and subscribe through an Observer.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/curator/internal/domain"
)

const (
	// AutoRefreshInterval is the period of the auto-refresh timer
	AutoRefreshInterval = 30 * time.Second

	// ToastDuration is how long a notification stays visible
	ToastDuration = 4 * time.Second
)

// Health summarizes the backend health check
type Health int

const (
	HealthUnknown Health = iota
	HealthOK
	HealthIssues
)

func (h Health) String() string {
	switch h {
	case HealthOK:
		return "✓ Healthy"
	case HealthIssues:
		return "✗ Issues"
	default:
		return "…"
	}
}

// Stats is the header information of the dashboard
type Stats struct {
	Counts        map[domain.Status]int // only statuses fetched at least once
	Health        Health
	HealthDetail  string
	LastRefreshed time.Time
}

// Snapshot is an immutable copy of the state a view renders
type Snapshot struct {
	Filter      domain.Status
	Torrents    []domain.Torrent // torrents of the active filter
	Loaded      bool             // the active filter has been fetched at least once
	Selected    []string         // selection in insertion order
	Toasts      []domain.Toast   // live toasts, oldest first
	Stats       Stats
	Refreshing  bool
	Busy        bool
	AutoRefresh bool
}

// IsSelected reports whether id is in the snapshot's selection
func (s Snapshot) IsSelected(id string) bool {
	for _, sel := range s.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces time.Now, used for toast expiry and refresh stamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRefreshInterval overrides AutoRefreshInterval
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.refreshInterval = d
		}
	}
}

// WithHistory records every approve/reject outcome
func WithHistory(h domain.HistoryRecorder) Option {
	return func(c *Controller) { c.history = h }
}

// WithPreferences persists the active filter and auto-refresh toggle
func WithPreferences(p domain.PreferenceStore) Option {
	return func(c *Controller) { c.prefs = p }
}

// WithFilter sets the initial status filter
func WithFilter(s domain.Status) Option {
	return func(c *Controller) {
		if s.Valid() {
			c.filter = s
		}
	}
}

// WithObserver registers an observer at construction time
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// Controller maintains a local view of the curator backend and mediates
// status changes. All methods are safe for concurrent use; the lock is
// never held across network calls. No method returns an error: failures
// become error toasts and log entries.
type Controller struct {
	repo    domain.TorrentRepository
	logger  *slog.Logger
	history domain.HistoryRecorder
	prefs   domain.PreferenceStore

	now             func() time.Time
	refreshInterval time.Duration
	toastDuration   time.Duration

	mu          sync.Mutex
	filter      domain.Status
	views       map[domain.Status][]domain.Torrent
	fetchSeq    uint64
	applied     map[domain.Status]uint64
	selected    map[string]struct{}
	selOrder    []string
	toasts      []domain.Toast
	nextToastID int
	stats       Stats
	refreshing  bool
	busy        int
	autoRefresh bool
	observers   []Observer

	// auto-refresh loop; loopMu serializes SetAutoRefresh
	loopMu   sync.Mutex
	stopLoop context.CancelFunc
	loopDone chan struct{}
}

// NewController creates a controller bound to one backend
func NewController(repo domain.TorrentRepository, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		repo:            repo,
		logger:          logger,
		now:             time.Now,
		refreshInterval: AutoRefreshInterval,
		toastDuration:   ToastDuration,
		filter:          domain.StatusPending,
		views:           make(map[domain.Status][]domain.Torrent),
		applied:         make(map[domain.Status]uint64),
		selected:        make(map[string]struct{}),
		stats:           Stats{Counts: make(map[domain.Status]int)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers an observer for state changes
func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// notify must be called without c.mu held
func (c *Controller) notify() {
	c.mu.Lock()
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o.OnChange()
	}
}

// Filter returns the active status filter
func (c *Controller) Filter() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// View returns a copy of the current state for rendering
func (c *Controller) View() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneToastsLocked()

	counts := make(map[domain.Status]int, len(c.stats.Counts))
	for k, v := range c.stats.Counts {
		counts[k] = v
	}
	stats := c.stats
	stats.Counts = counts

	_, loaded := c.views[c.filter]
	return Snapshot{
		Filter:      c.filter,
		Torrents:    append([]domain.Torrent(nil), c.views[c.filter]...),
		Loaded:      loaded,
		Selected:    append([]string(nil), c.selOrder...),
		Toasts:      append([]domain.Toast(nil), c.toasts...),
		Stats:       stats,
		Refreshing:  c.refreshing,
		Busy:        c.busy > 0,
		AutoRefresh: c.autoRefresh,
	}
}

// Torrents returns the cached view for status
func (c *Controller) Torrents(status domain.Status) []domain.Torrent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Torrent(nil), c.views[status]...)
}

// SetFilter switches the active view and fetches it
func (c *Controller) SetFilter(ctx context.Context, status domain.Status) {
	if !status.Valid() {
		c.Toast(domain.SeverityError, fmt.Sprintf("Unknown status %q", status))
		return
	}

	c.mu.Lock()
	changed := c.filter != status
	c.filter = status
	c.mu.Unlock()

	if changed {
		c.savePreferences()
		c.notify()
	}
	c.FetchTorrents(ctx, status)
}

// FetchTorrents loads the view for status. On failure the previous view is
// kept and one error toast is emitted.
func (c *Controller) FetchTorrents(ctx context.Context, status domain.Status) {
	if !status.Valid() {
		c.Toast(domain.SeverityError, fmt.Sprintf("Unknown status %q", status))
		return
	}
	if err := c.fetch(ctx, status); err != nil {
		c.fail(err, "Failed to load torrents", "status", status)
	}
}

// fetch loads one view without emitting toasts. Responses that arrive after
// a newer request for the same status was applied are discarded.
func (c *Controller) fetch(ctx context.Context, status domain.Status) error {
	c.beginWork()
	defer c.endWork()

	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	c.mu.Unlock()

	torrents, err := c.repo.ListTorrents(ctx, status)
	if err != nil {
		return err
	}

	// The backend may ignore or broaden the filter; the view only ever
	// holds torrents in the requested status.
	view := make([]domain.Torrent, 0, len(torrents))
	for _, t := range torrents {
		if t.Status == status {
			view = append(view, t)
		}
	}

	c.mu.Lock()
	if seq < c.applied[status] {
		c.mu.Unlock()
		c.logger.Debug("discarding stale torrent list", "status", status)
		return nil
	}
	c.applied[status] = seq
	c.views[status] = view
	c.stats.Counts[status] = len(view)
	c.mu.Unlock()

	c.logger.Debug("torrents fetched", "status", status, "count", len(view))
	c.notify()
	return nil
}

// Refresh re-checks health, every status count and the active view, then
// stamps the refresh time. It returns false without doing anything when a
// refresh is already running.
func (c *Controller) Refresh(ctx context.Context) bool {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return false
	}
	c.refreshing = true
	filter := c.filter
	c.mu.Unlock()
	c.notify()

	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
		c.notify()
	}()

	// Health, the counts and the active view are independent requests
	var g errgroup.Group
	g.Go(func() error {
		c.updateHealth(ctx)
		return nil
	})
	for _, status := range domain.AllStatuses {
		if status == filter {
			continue
		}
		g.Go(func() error {
			// Counts for other tabs are best effort
			if err := c.fetch(ctx, status); err != nil && !isCanceled(err) {
				c.logger.Warn("failed to update stats", "status", status, "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return c.fetch(ctx, filter)
	})

	if err := g.Wait(); err != nil {
		c.fail(err, "Failed to refresh data", "status", filter)
		return true
	}

	c.mu.Lock()
	c.stats.LastRefreshed = c.now()
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Controller) updateHealth(ctx context.Context) {
	status, err := c.repo.Health(ctx)
	if isCanceled(err) {
		return
	}

	c.mu.Lock()
	switch {
	case err != nil:
		c.stats.Health = HealthIssues
		c.stats.HealthDetail = err.Error()
	case status == "ok" || status == "healthy":
		c.stats.Health = HealthOK
		c.stats.HealthDetail = status
	default:
		c.stats.Health = HealthIssues
		c.stats.HealthDetail = status
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("health check failed", "error", err)
	}
	c.notify()
}

// fail logs err and surfaces it as a toast. Cancellation is not an operator
// error and is only logged.
func (c *Controller) fail(err error, message string, args ...any) {
	if isCanceled(err) {
		c.logger.Debug(message+" (canceled)", args...)
		return
	}
	c.logger.Error(message, append(args, "error", err)...)
	c.Toast(domain.SeverityError, message+": "+err.Error())
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func (c *Controller) beginWork() {
	c.mu.Lock()
	c.busy++
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) endWork() {
	c.mu.Lock()
	c.busy--
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) savePreferences() {
	if c.prefs == nil {
		return
	}
	c.mu.Lock()
	prefs := domain.Preferences{Filter: c.filter, AutoRefresh: c.autoRefresh}
	c.mu.Unlock()

	if err := c.prefs.SavePreferences(prefs); err != nil {
		c.logger.Warn("failed to save preferences", "error", err)
	}
}

// Close stops auto-refresh without touching the saved preference, so the
// next launch resumes it. The controller stays usable for reads.
func (c *Controller) Close() {
	c.setAutoRefresh(false, false)
}
