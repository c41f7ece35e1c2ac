package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/curator/internal/dashboard"
	"github.com/mmcdole/curator/internal/domain"
	"github.com/mmcdole/curator/internal/tui/components"
	"github.com/mmcdole/curator/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirm
)

// Vertical layout: two header lines and a single footer line
const (
	HeaderHeight = 2
	FooterHeight = 1
)

// Opener launches a torrent's link outside the terminal
type Opener interface {
	Open(t domain.Torrent) error
}

// Options configures the dashboard model
type Options struct {
	ConfirmActions bool
	ServerURL      string
	Opener         Opener // nil disables the open key
	Logger         *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Controller and its change feed
	ctrl    *dashboard.Controller
	changes *dashboard.ChannelObserver
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	opener  Opener

	// UI Components
	List    *components.TorrentList
	Confirm components.ConfirmModal
	Help    help.Model
	Spinner spinner.Model

	// Last rendered controller state
	snap dashboard.Snapshot

	// Dimensions
	Width  int
	Height int

	// UI state
	serverURL      string
	confirmActions bool
	pending        *pendingAction
	spinning       bool
	toastTick      time.Time // expiry the scheduled toast tick fires for
}

// NewModel creates the dashboard model bound to one controller. Canceling
// ctx aborts any request a command has in flight.
func NewModel(ctx context.Context, ctrl *dashboard.Controller, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	obs := dashboard.NewChannelObserver()
	ctrl.Subscribe(obs)

	ctx, cancel := context.WithCancel(ctx)

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	m := Model{
		State:          StateBrowsing,
		ctrl:           ctrl,
		changes:        obs,
		ctx:            ctx,
		cancel:         cancel,
		logger:         logger,
		opener:         opts.Opener,
		List:           components.NewTorrentList(),
		Confirm:        components.NewConfirmModal(),
		Help:           h,
		Spinner:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.SpinnerStyle)),
		serverURL:      opts.ServerURL,
		confirmActions: opts.ConfirmActions,
	}
	m.sync()
	return m
}

// Init starts listening for changes and loads the dashboard
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenForChangesCmd(m.changes),
		RefreshCmd(m.ctx, m.ctrl),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Help.Width = msg.Width
		m.List.SetSize(msg.Width, msg.Height-HeaderHeight-FooterHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case StateChangedMsg:
		cmd := m.sync()
		return m, tea.Batch(listenForChangesCmd(m.changes), cmd)

	case ToastExpiredMsg:
		m.toastTick = time.Time{}
		cmd := m.sync()
		return m, cmd

	case CommandDoneMsg:
		cmd := m.sync()
		return m, cmd

	case BulkDoneMsg:
		m.logger.Debug("bulk action returned", "action", msg.Action,
			"succeeded", msg.Result.Succeeded, "total", msg.Result.Total)
		cmd := m.sync()
		return m, cmd

	case spinner.TickMsg:
		if !m.working() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	// Cursor blink and similar messages belong to the filter input
	if m.List.IsFilterTyping() {
		return m, m.List.Update(msg)
	}
	return m, nil
}

// sync pulls a fresh snapshot into the view and schedules the spinner and
// the toast expiry tick when needed.
func (m *Model) sync() tea.Cmd {
	m.snap = m.ctrl.View()
	m.List.SetItems(m.snap.Filter, m.snap.Torrents, m.snap.Loaded)
	m.List.SetSelected(m.snap.Selected)

	var cmds []tea.Cmd
	if m.working() && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.Spinner.Tick)
	}
	if at, ok := m.ctrl.NextToastExpiry(); ok && !at.Equal(m.toastTick) {
		m.toastTick = at
		cmds = append(cmds, ToastExpiryCmd(at))
	}
	return tea.Batch(cmds...)
}

func (m Model) working() bool {
	return m.snap.Busy || m.snap.Refreshing
}

// Snapshot returns the controller state last rendered
func (m Model) Snapshot() dashboard.Snapshot {
	return m.snap
}
