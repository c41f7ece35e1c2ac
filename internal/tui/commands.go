package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/curator/internal/dashboard"
	"github.com/mmcdole/curator/internal/domain"
)

// Controller operations block on the network, so each runs inside a
// tea.Cmd. Results reach the view through the observer, not the returned
// message.

// RefreshCmd re-checks health, counts and the active view
func RefreshCmd(ctx context.Context, ctrl *dashboard.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Refresh(ctx)
		return CommandDoneMsg{Name: "refresh"}
	}
}

// SetFilterCmd switches the active view
func SetFilterCmd(ctx context.Context, ctrl *dashboard.Controller, status domain.Status) tea.Cmd {
	return func() tea.Msg {
		ctrl.SetFilter(ctx, status)
		return CommandDoneMsg{Name: "filter"}
	}
}

// ActionCmd approves or rejects one torrent
func ActionCmd(ctx context.Context, ctrl *dashboard.Controller, action domain.Action, id string) tea.Cmd {
	return func() tea.Msg {
		if action == domain.ActionApprove {
			ctrl.Approve(ctx, id)
		} else {
			ctrl.Reject(ctx, id)
		}
		return CommandDoneMsg{Name: string(action)}
	}
}

// BulkCmd applies action to the whole selection
func BulkCmd(ctx context.Context, ctrl *dashboard.Controller, action domain.Action) tea.Cmd {
	return func() tea.Msg {
		var result dashboard.BulkResult
		if action == domain.ActionApprove {
			result = ctrl.BulkApprove(ctx)
		} else {
			result = ctrl.BulkReject(ctx)
		}
		return BulkDoneMsg{Action: action, Result: result}
	}
}

// OpenCmd launches the torrent's link and reports the outcome as a toast
func OpenCmd(ctrl *dashboard.Controller, opener Opener, t domain.Torrent) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(t); err != nil {
			ctrl.Toast(domain.SeverityError, "Failed to open link: "+err.Error())
		} else {
			ctrl.Toast(domain.SeverityInfo, "Opened "+t.Title)
		}
		return CommandDoneMsg{Name: "open"}
	}
}

// AutoRefreshCmd toggles the auto-refresh timer. Disabling waits for the
// loop to exit, so it also runs off the update goroutine.
func AutoRefreshCmd(ctrl *dashboard.Controller, enabled bool) tea.Cmd {
	return func() tea.Msg {
		ctrl.SetAutoRefresh(enabled)
		return CommandDoneMsg{Name: "auto-refresh"}
	}
}

// ToastExpiryCmd fires when the oldest live toast lapses
func ToastExpiryCmd(at time.Time) tea.Cmd {
	return tea.Tick(time.Until(at), func(time.Time) tea.Msg {
		return ToastExpiredMsg{}
	})
}
