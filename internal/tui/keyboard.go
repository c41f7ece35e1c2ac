package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/curator/internal/domain"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil

	case StateConfirm:
		switch {
		case key.Matches(msg, Keys.Confirm):
			action := *m.pending
			m.closeConfirm()
			return m, m.execute(action)
		case key.Matches(msg, Keys.Deny):
			m.closeConfirm()
		}
		return m, nil
	}

	// The filter input owns every key while typing
	if m.List.IsFilterTyping() {
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			return m, tea.Quit
		}
		return m, m.List.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.List.IsFiltering() {
			m.List.ClearFilter()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.List.ToggleFilter()
		return m, textinput.Blink

	case key.Matches(msg, Keys.NextFilter):
		return m, m.switchFilter(1)

	case key.Matches(msg, Keys.PrevFilter):
		return m, m.switchFilter(-1)

	case key.Matches(msg, Keys.Pending):
		return m, SetFilterCmd(m.ctx, m.ctrl, domain.StatusPending)

	case key.Matches(msg, Keys.Approved):
		return m, SetFilterCmd(m.ctx, m.ctrl, domain.StatusApproved)

	case key.Matches(msg, Keys.Rejected):
		return m, SetFilterCmd(m.ctx, m.ctrl, domain.StatusRejected)

	case key.Matches(msg, Keys.Select):
		if t := m.List.SelectedTorrent(); t != nil {
			m.ctrl.ToggleSelection(t.ID)
			cmd := m.sync()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, Keys.SelectAll):
		m.selectVisible()
		cmd := m.sync()
		return m, cmd

	case key.Matches(msg, Keys.Approve):
		return m.requestSingle(domain.ActionApprove)

	case key.Matches(msg, Keys.Reject):
		return m.requestSingle(domain.ActionReject)

	case key.Matches(msg, Keys.BulkApprove):
		return m.requestBulk(domain.ActionApprove)

	case key.Matches(msg, Keys.BulkReject):
		return m.requestBulk(domain.ActionReject)

	case key.Matches(msg, Keys.Open):
		return m.openLink()

	case key.Matches(msg, Keys.Refresh):
		return m, RefreshCmd(m.ctx, m.ctrl)

	case key.Matches(msg, Keys.AutoRefresh):
		return m, AutoRefreshCmd(m.ctrl, !m.snap.AutoRefresh)

	case key.Matches(msg, Keys.Dismiss):
		if n := len(m.snap.Toasts); n > 0 {
			m.ctrl.DismissToast(m.snap.Toasts[n-1].ID)
			cmd := m.sync()
			return m, cmd
		}
		return m, nil
	}

	return m, m.List.Update(msg)
}

func (m Model) switchFilter(step int) tea.Cmd {
	n := len(domain.AllStatuses)
	idx := 0
	for i, s := range domain.AllStatuses {
		if s == m.snap.Filter {
			idx = i
			break
		}
	}
	next := domain.AllStatuses[((idx+step)%n+n)%n]
	return SetFilterCmd(m.ctx, m.ctrl, next)
}

// selectVisible selects every visible row, or clears them when all of them
// are already selected. Without a fuzzy filter this is the whole view.
func (m Model) selectVisible() {
	if !m.List.IsFiltering() {
		m.ctrl.SelectAll()
		return
	}

	ids := m.List.VisibleIDs()
	all := len(ids) > 0
	for _, id := range ids {
		if !m.snap.IsSelected(id) {
			all = false
			break
		}
	}
	for _, id := range ids {
		if all || !m.snap.IsSelected(id) {
			m.ctrl.ToggleSelection(id)
		}
	}
}

func (m Model) requestSingle(action domain.Action) (tea.Model, tea.Cmd) {
	t := m.List.SelectedTorrent()
	if t == nil {
		return m, nil
	}
	if t.Status != domain.StatusPending {
		m.ctrl.Toast(domain.SeverityInfo, fmt.Sprintf("Torrent is already %s", t.Status))
		cmd := m.sync()
		return m, cmd
	}
	return m.request(pendingAction{action: action, id: t.ID, title: t.Title, count: 1})
}

func (m Model) openLink() (tea.Model, tea.Cmd) {
	t := m.List.SelectedTorrent()
	if t == nil || m.opener == nil {
		return m, nil
	}
	if t.Link == "" {
		m.ctrl.Toast(domain.SeverityInfo, "This torrent has no link")
		cmd := m.sync()
		return m, cmd
	}
	return m, OpenCmd(m.ctrl, m.opener, *t)
}

func (m Model) requestBulk(action domain.Action) (tea.Model, tea.Cmd) {
	count := len(m.snap.Selected)
	if count == 0 {
		// The controller reports the empty selection
		return m, BulkCmd(m.ctx, m.ctrl, action)
	}
	return m.request(pendingAction{action: action, count: count})
}

func (m Model) request(p pendingAction) (tea.Model, tea.Cmd) {
	if !m.confirmActions {
		return m, m.execute(p)
	}

	verb := p.action.Title()
	if p.id != "" {
		m.Confirm.Show(fmt.Sprintf("%s this torrent?", verb), p.title)
	} else {
		m.Confirm.Show(
			fmt.Sprintf("%s %d selected torrents?", verb, p.count),
			"Each torrent is sent to the curator one at a time.",
		)
	}
	m.pending = &p
	m.State = StateConfirm
	return m, nil
}

func (m *Model) closeConfirm() {
	m.Confirm.Hide()
	m.pending = nil
	m.State = StateBrowsing
}

func (m Model) execute(p pendingAction) tea.Cmd {
	if p.id == "" {
		return BulkCmd(m.ctx, m.ctrl, p.action)
	}
	return ActionCmd(m.ctx, m.ctrl, p.action, p.id)
}
