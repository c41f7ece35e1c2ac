package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/curator/internal/curatorapi"
	"github.com/mmcdole/curator/internal/domain"
	"github.com/mmcdole/curator/internal/logging"
	"github.com/mmcdole/curator/internal/store"
	"github.com/mmcdole/curator/internal/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestController(t *testing.T, api *testutil.FakeAPI, opts ...Option) *Controller {
	t.Helper()
	client := curatorapi.NewClient(api.URL(), 5*time.Second, logging.NullLogger())
	c := NewController(client, logging.NullLogger(), opts...)
	t.Cleanup(c.Close)
	return c
}

func seededAPI(t *testing.T) *testutil.FakeAPI {
	api := testutil.NewFakeAPI(t,
		testutil.Torrent("1", "Severance.S02E01.1080p.WEB", 1536),
		testutil.Torrent("2", "Severance.S02E02.1080p.WEB", 2<<30),
		testutil.Torrent("3", "Andor.S02E01.2160p", 5<<30),
	)
	done := testutil.Torrent("4", "Slow.Horses.S04E01", 1<<20)
	done.Status = domain.StatusApproved
	api.Add(done)
	return api
}

func toastMessages(toasts []domain.Toast) []string {
	out := make([]string, 0, len(toasts))
	for _, t := range toasts {
		out = append(out, t.Message)
	}
	return out
}

func countSeverity(toasts []domain.Toast, sev domain.Severity) int {
	n := 0
	for _, t := range toasts {
		if t.Severity == sev {
			n++
		}
	}
	return n
}

func ids(torrents []domain.Torrent) []string {
	out := make([]string, 0, len(torrents))
	for _, t := range torrents {
		out = append(out, t.ID)
	}
	return out
}

func TestFetchTorrents(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)
	ctx := context.Background()

	c.FetchTorrents(ctx, domain.StatusPending)

	view := c.View()
	assert.True(t, view.Loaded)
	assert.Equal(t, []string{"1", "2", "3"}, ids(view.Torrents))
	for _, torrent := range view.Torrents {
		assert.Equal(t, domain.StatusPending, torrent.Status)
	}
	assert.Equal(t, 3, view.Stats.Counts[domain.StatusPending])
	assert.Empty(t, view.Toasts)
	assert.False(t, view.Busy)

	c.FetchTorrents(ctx, domain.StatusApproved)
	assert.Equal(t, []string{"4"}, ids(c.Torrents(domain.StatusApproved)))
}

type broadRepo struct {
	domain.TorrentRepository
	torrents []domain.Torrent
}

func (r broadRepo) ListTorrents(context.Context, domain.Status) ([]domain.Torrent, error) {
	return r.torrents, nil
}

func TestFetchTorrentsFiltersByStatus(t *testing.T) {
	repo := broadRepo{torrents: []domain.Torrent{
		{ID: "1", Title: "a", Status: domain.StatusPending},
		{ID: "2", Title: "b", Status: domain.StatusApproved},
		{ID: "3", Title: "c", Status: domain.StatusRejected},
	}}
	c := NewController(repo, logging.NullLogger())

	for _, status := range domain.AllStatuses {
		c.FetchTorrents(context.Background(), status)
		view := c.Torrents(status)
		require.Len(t, view, 1, status)
		assert.Equal(t, status, view[0].Status)
	}
}

func TestFetchTorrentsFailureKeepsView(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)
	ctx := context.Background()

	c.FetchTorrents(ctx, domain.StatusPending)
	before := c.View().Torrents

	api.FailLists(1)
	api.Add(testutil.Torrent("5", "New.Arrival", 10))
	c.FetchTorrents(ctx, domain.StatusPending)

	view := c.View()
	assert.Equal(t, before, view.Torrents)
	require.Len(t, view.Toasts, 1)
	assert.Equal(t, domain.SeverityError, view.Toasts[0].Severity)
	assert.Equal(t, "Failed to load torrents: database is locked", view.Toasts[0].Message)
}

func TestFetchTorrentsMalformedBody(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)

	api.ServeRawList(`{"count": 2}`)
	c.FetchTorrents(context.Background(), domain.StatusPending)

	view := c.View()
	assert.False(t, view.Loaded)
	assert.Empty(t, view.Torrents)
	assert.Equal(t, 1, countSeverity(view.Toasts, domain.SeverityError))
}

func TestFetchTorrentsCanceled(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.FetchTorrents(ctx, domain.StatusPending)

	assert.Empty(t, c.View().Toasts, "cancellation is not reported to the operator")
}

func TestApprove(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)
	ctx := context.Background()

	c.FetchTorrents(ctx, domain.StatusPending)
	c.FetchTorrents(ctx, domain.StatusApproved)

	require.True(t, c.Approve(ctx, "1"))

	assert.Equal(t, domain.StatusApproved, api.Status("1"))
	assert.NotContains(t, ids(c.Torrents(domain.StatusPending)), "1")
	assert.Contains(t, ids(c.Torrents(domain.StatusApproved)), "1")
	assert.Equal(t, []string{"Torrent approved!"}, toastMessages(c.Toasts()))
	assert.Equal(t, []string{"approve:1"}, api.Posts())
}

func TestReject(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)
	ctx := context.Background()

	c.FetchTorrents(ctx, domain.StatusPending)
	require.True(t, c.Reject(ctx, "3"))

	assert.Equal(t, domain.StatusRejected, api.Status("3"))
	assert.Equal(t, []string{"3"}, ids(c.Torrents(domain.StatusRejected)))
	assert.Equal(t, []string{"Torrent rejected!"}, toastMessages(c.Toasts()))
}

func TestApproveFailure(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(api *testutil.FakeAPI)
		id      string
		message string
	}{
		{
			name:    "backend error message",
			setup:   func(api *testutil.FakeAPI) { api.FailAction("2", "tracker unreachable") },
			id:      "2",
			message: "Failed to approve torrent: tracker unreachable",
		},
		{
			name:    "not found",
			setup:   func(api *testutil.FakeAPI) {},
			id:      "99",
			message: "Failed to approve torrent: Torrent not found",
		},
		{
			name:    "already approved",
			setup:   func(api *testutil.FakeAPI) {},
			id:      "4",
			message: "Failed to approve torrent: Torrent already approved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := seededAPI(t)
			tt.setup(api)
			c := newTestController(t, api)
			ctx := context.Background()

			c.FetchTorrents(ctx, domain.StatusPending)
			before := c.View()
			listsBefore := api.ListRequests()

			assert.False(t, c.Approve(ctx, tt.id))

			after := c.View()
			assert.Equal(t, before.Torrents, after.Torrents, "no local mutation")
			assert.Equal(t, listsBefore, api.ListRequests(), "no refetch after a failure")
			require.Len(t, after.Toasts, 1)
			assert.Equal(t, domain.SeverityError, after.Toasts[0].Severity)
			assert.Equal(t, tt.message, after.Toasts[0].Message)
		})
	}
}

func TestApproveRemovesFromSelection(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)
	ctx := context.Background()

	c.ToggleSelection("1")
	c.ToggleSelection("2")
	require.True(t, c.Approve(ctx, "1"))

	assert.Equal(t, []string{"2"}, c.Selected())
}

func TestToggleSelection(t *testing.T) {
	c := NewController(broadRepo{}, logging.NullLogger())

	c.ToggleSelection("a")
	c.ToggleSelection("b")
	c.ToggleSelection("c")
	assert.Equal(t, []string{"a", "b", "c"}, c.Selected())

	c.ToggleSelection("b")
	assert.Equal(t, []string{"a", "c"}, c.Selected())
	assert.True(t, c.View().IsSelected("c"))
	assert.False(t, c.View().IsSelected("b"))

	c.ClearSelection()
	assert.Empty(t, c.Selected())
}

func TestSelectAll(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)

	c.FetchTorrents(context.Background(), domain.StatusPending)
	c.ToggleSelection("2")

	c.SelectAll()
	assert.Equal(t, []string{"2", "1", "3"}, c.Selected())

	c.SelectAll()
	assert.Empty(t, c.Selected(), "selecting all twice clears")
}

func TestSelect(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)

	c.Select("2", "1", "2")
	c.Select("1", "3")

	assert.Equal(t, []string{"2", "1", "3"}, c.Selected(), "repeated ids stay selected once")
}

func TestBulkApprove(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)
	ctx := context.Background()

	c.FetchTorrents(ctx, domain.StatusPending)
	c.ToggleSelection("3")
	c.ToggleSelection("1")

	result := c.BulkApprove(ctx)

	assert.Equal(t, BulkResult{Succeeded: 2, Total: 2}, result)
	assert.Equal(t, []string{"approve:3", "approve:1"}, api.Posts(), "posts follow selection order")
	assert.Empty(t, c.Selected())
	assert.Equal(t, []string{"2"}, ids(c.Torrents(domain.StatusPending)))

	toasts := c.Toasts()
	require.Len(t, toasts, 1, "per-item success toasts are folded into the summary")
	assert.Equal(t, "Approved 2/2", toasts[0].Message)
	assert.Equal(t, domain.SeveritySuccess, toasts[0].Severity)
}

func TestBulkRejectPartialFailure(t *testing.T) {
	api := seededAPI(t)
	api.FailAction("2", "locked")
	c := newTestController(t, api)
	ctx := context.Background()

	c.FetchTorrents(ctx, domain.StatusPending)
	for _, id := range []string{"1", "2", "3"} {
		c.ToggleSelection(id)
	}
	pendingBefore := api.Requests("list:pending")

	result := c.BulkReject(ctx)

	assert.Equal(t, BulkResult{Succeeded: 2, Total: 3}, result)
	assert.Empty(t, c.Selected())
	assert.Equal(t, pendingBefore+1, api.Requests("list:pending"), "one refetch for the whole batch")

	toasts := c.Toasts()
	assert.Equal(t, []string{"Failed to reject torrent: locked", "Rejected 2/3"}, toastMessages(toasts))
}

func TestBulkAllFail(t *testing.T) {
	api := seededAPI(t)
	api.FailAction("1", "nope")
	api.FailAction("2", "nope")
	c := newTestController(t, api)
	ctx := context.Background()

	c.ToggleSelection("1")
	c.ToggleSelection("2")
	listsBefore := api.ListRequests()

	result := c.BulkApprove(ctx)

	assert.Equal(t, BulkResult{Succeeded: 0, Total: 2}, result)
	assert.Equal(t, []string{"1", "2"}, c.Selected(), "selection survives when nothing succeeded")
	assert.Equal(t, listsBefore, api.ListRequests())

	toasts := c.Toasts()
	assert.Equal(t, 3, countSeverity(toasts, domain.SeverityError))
	assert.Equal(t, "Approved 0/2", toasts[len(toasts)-1].Message)
}

func TestBulkEmptySelection(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api)

	result := c.BulkApprove(context.Background())

	assert.Equal(t, BulkResult{}, result)
	assert.Empty(t, api.Posts())
	toasts := c.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, domain.SeverityInfo, toasts[0].Severity)
}

func TestSetFilter(t *testing.T) {
	api := seededAPI(t)
	prefs, err := store.NewDashboardStore("", "")
	require.NoError(t, err)
	c := newTestController(t, api, WithPreferences(prefs))
	ctx := context.Background()

	c.SetFilter(ctx, domain.StatusApproved)

	view := c.View()
	assert.Equal(t, domain.StatusApproved, view.Filter)
	assert.Equal(t, []string{"4"}, ids(view.Torrents))

	saved, ok := prefs.LoadPreferences()
	require.True(t, ok)
	assert.Equal(t, domain.StatusApproved, saved.Filter)

	c.SetFilter(ctx, domain.Status("archived"))
	assert.Equal(t, domain.StatusApproved, c.Filter(), "invalid filter leaves state unchanged")
	assert.Equal(t, 1, countSeverity(c.Toasts(), domain.SeverityError))
}

func TestRefresh(t *testing.T) {
	api := seededAPI(t)
	clock := newFakeClock()
	c := newTestController(t, api, WithClock(clock.Now))

	require.True(t, c.Refresh(context.Background()))

	view := c.View()
	assert.Equal(t, HealthOK, view.Stats.Health)
	assert.Equal(t, clock.Now(), view.Stats.LastRefreshed)
	assert.Equal(t, map[domain.Status]int{
		domain.StatusPending:  3,
		domain.StatusApproved: 1,
		domain.StatusRejected: 0,
	}, view.Stats.Counts)
	assert.False(t, view.Refreshing)
	assert.Equal(t, 1, api.Requests("health"))
}

func TestRefreshHealth(t *testing.T) {
	tests := []struct {
		status string
		want   Health
	}{
		{status: "ok", want: HealthOK},
		{status: "healthy", want: HealthOK},
		{status: "degraded", want: HealthIssues},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			api := seededAPI(t)
			api.SetHealth(tt.status)
			c := newTestController(t, api)

			c.Refresh(context.Background())
			assert.Equal(t, tt.want, c.View().Stats.Health)
		})
	}
}

func TestRefreshFailureKeepsTimestamp(t *testing.T) {
	api := seededAPI(t)
	clock := newFakeClock()
	c := newTestController(t, api, WithClock(clock.Now))
	ctx := context.Background()

	c.Refresh(ctx)
	first := c.View().Stats.LastRefreshed

	clock.Advance(time.Minute)
	api.FailLists(3)
	c.Refresh(ctx)

	view := c.View()
	assert.Equal(t, first, view.Stats.LastRefreshed)
	assert.Equal(t, 3, view.Stats.Counts[domain.StatusPending])
	assert.Equal(t, 1, countSeverity(view.Toasts, domain.SeverityError), "only the active view reports")
}

type blockingRepo struct {
	domain.TorrentRepository
	release chan struct{}
	entered chan struct{}
	calls   atomic.Int32
}

func (r *blockingRepo) Health(ctx context.Context) (string, error) {
	r.calls.Add(1)
	r.entered <- struct{}{}
	<-r.release
	return "ok", nil
}

func (r *blockingRepo) ListTorrents(context.Context, domain.Status) ([]domain.Torrent, error) {
	return nil, nil
}

func TestRefreshCollapses(t *testing.T) {
	repo := &blockingRepo{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	c := NewController(repo, logging.NullLogger())

	done := make(chan bool)
	go func() { done <- c.Refresh(context.Background()) }()
	<-repo.entered

	assert.True(t, c.View().Refreshing)
	assert.False(t, c.Refresh(context.Background()), "second refresh is dropped")

	close(repo.release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestToastExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewController(broadRepo{}, logging.NullLogger(), WithClock(clock.Now))

	c.Toast(domain.SeverityInfo, "first")
	clock.Advance(2 * time.Second)
	c.Toast(domain.SeveritySuccess, "second")

	expiry, ok := c.NextToastExpiry()
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(2*time.Second), expiry)

	clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"second"}, toastMessages(c.Toasts()))

	clock.Advance(2 * time.Second)
	assert.Empty(t, c.Toasts())
	_, ok = c.NextToastExpiry()
	assert.False(t, ok)
}

func TestDismissToast(t *testing.T) {
	c := NewController(broadRepo{}, logging.NullLogger())

	c.Toast(domain.SeverityInfo, "a")
	c.Toast(domain.SeverityInfo, "b")
	toasts := c.Toasts()
	require.Len(t, toasts, 2)
	assert.NotEqual(t, toasts[0].ID, toasts[1].ID)

	c.DismissToast(toasts[0].ID)
	assert.Equal(t, []string{"b"}, toastMessages(c.Toasts()))
}

func TestAutoRefresh(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api, WithRefreshInterval(10*time.Millisecond))

	c.SetAutoRefresh(true)
	assert.True(t, c.AutoRefresh())

	require.Eventually(t, func() bool {
		return api.Requests("list:pending") >= 3
	}, 2*time.Second, 5*time.Millisecond, "ticks re-fetch the active view")

	c.SetAutoRefresh(false)
	assert.False(t, c.AutoRefresh())

	after := api.ListRequests()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, api.ListRequests(), "no fetch after disabling")
}

func TestAutoRefreshUsesCurrentFilter(t *testing.T) {
	api := seededAPI(t)
	c := newTestController(t, api, WithRefreshInterval(10*time.Millisecond))

	c.SetAutoRefresh(true)
	c.SetFilter(context.Background(), domain.StatusRejected)
	before := api.Requests("list:rejected")

	require.Eventually(t, func() bool {
		return api.Requests("list:rejected") > before+1
	}, 2*time.Second, 5*time.Millisecond)
	c.SetAutoRefresh(false)
}

func TestClosePreservesAutoRefreshPreference(t *testing.T) {
	api := seededAPI(t)
	prefs, err := store.NewDashboardStore("", "")
	require.NoError(t, err)
	c := newTestController(t, api, WithPreferences(prefs), WithRefreshInterval(time.Hour))

	c.SetAutoRefresh(true)
	c.Close()

	saved, ok := prefs.LoadPreferences()
	require.True(t, ok)
	assert.True(t, saved.AutoRefresh)
	assert.False(t, c.AutoRefresh())
}

func TestHistoryRecording(t *testing.T) {
	api := seededAPI(t)
	api.FailAction("2", "locked")
	history, err := store.NewDashboardStore("", "")
	require.NoError(t, err)
	clock := newFakeClock()
	c := newTestController(t, api, WithHistory(history), WithClock(clock.Now))
	ctx := context.Background()

	c.FetchTorrents(ctx, domain.StatusPending)
	c.Approve(ctx, "1")
	c.Reject(ctx, "2")

	records, err := history.RecentActivity(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "2", records[0].TorrentID)
	assert.Equal(t, domain.ActionReject, records[0].Action)
	assert.False(t, records[0].OK)
	assert.Equal(t, "locked", records[0].Error)

	assert.Equal(t, "1", records[1].TorrentID)
	assert.Equal(t, "Severance.S02E01.1080p.WEB", records[1].Title)
	assert.True(t, records[1].OK)
	assert.Equal(t, clock.Now(), records[1].At)
}

func TestObserverNotified(t *testing.T) {
	api := seededAPI(t)
	var changes atomic.Int32
	c := newTestController(t, api, WithObserver(ObserverFunc(func() { changes.Add(1) })))

	c.FetchTorrents(context.Background(), domain.StatusPending)
	assert.Positive(t, changes.Load())

	obs := NewChannelObserver()
	c.Subscribe(obs)
	c.ToggleSelection("1")
	c.ToggleSelection("2")

	select {
	case <-obs.C():
	default:
		t.Fatal("expected a pending change signal")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{512, "512 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1 << 20, "1 MB"},
		{1288490189, "1.2 GB"},
		{5 << 30, "5 GB"},
		{2048 << 30, "2048 GB"},
		{1000, "1000 B"},
		{1234567, "1.18 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.bytes))
		})
	}
}

func TestReleaseSummary(t *testing.T) {
	episode := ReleaseSummary("Severance.S02E01.Hello.Ms.Cobel.1080p.ATVP.WEB-DL.DDP5.1.H.264-FLUX")
	assert.Contains(t, episode, "S02E01")
	assert.Contains(t, episode, "1080p")

	movie := ReleaseSummary("Dune.Part.Two.2024.2160p.UHD.BluRay.x265-GROUP")
	assert.Contains(t, movie, "2024")
	assert.Contains(t, movie, "2160p")

	assert.Empty(t, ReleaseSummary(""))
	assert.Empty(t, ReleaseSummary("   "))
}
