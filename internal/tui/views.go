package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/curator/internal/dashboard"
	"github.com/mmcdole/curator/internal/domain"
	"github.com/mmcdole/curator/internal/tui/styles"
)

// View renders the dashboard
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	// Handle modal states
	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirm:
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Confirm.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitleBar(),
		m.renderTabs(),
		m.List.View(),
		m.renderFooter(),
	)
}

// renderTitleBar renders the app name on the left and the stats on the right
func (m Model) renderTitleBar() string {
	left := styles.TitleStyle.Render("curator")
	if m.serverURL != "" {
		left += " " + styles.DimStyle.Render(m.serverURL)
	}

	stats := m.snap.Stats
	var parts []string

	if n := len(m.snap.Selected); n > 0 {
		parts = append(parts, styles.AccentStyle.Render(fmt.Sprintf("%d selected", n)))
	}

	parts = append(parts, renderHealth(stats.Health))

	if m.snap.AutoRefresh {
		parts = append(parts, styles.AccentStyle.Render("⟳ auto"))
	} else {
		parts = append(parts, styles.DimStyle.Render("auto off"))
	}

	if stats.LastRefreshed.IsZero() {
		parts = append(parts, styles.DimStyle.Render("never updated"))
	} else {
		parts = append(parts, styles.DimStyle.Render("updated "+stats.LastRefreshed.Format("15:04:05")))
	}

	right := strings.Join(parts, styles.DimStyle.Render(" · "))
	return joinEnds(left, right, m.Width)
}

func renderHealth(h dashboard.Health) string {
	switch h {
	case dashboard.HealthOK:
		return styles.SuccessStyle.Render(h.String())
	case dashboard.HealthIssues:
		return styles.ErrorStyle.Render(h.String())
	default:
		return styles.DimStyle.Render(h.String())
	}
}

// renderTabs renders one tab per status with its count when known
func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(domain.AllStatuses))
	for i, status := range domain.AllStatuses {
		label := fmt.Sprintf("%d %s", i+1, status.Title())
		if n, ok := m.snap.Stats.Counts[status]; ok {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		if status == m.snap.Filter {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderFooter shows activity and the newest toast on the left, key hints on the right
func (m Model) renderFooter() string {
	var left []string
	if m.working() {
		label := "Working..."
		if m.snap.Refreshing {
			label = "Refreshing..."
		}
		left = append(left, m.Spinner.View()+" "+styles.DimStyle.Render(label))
	}
	if n := len(m.snap.Toasts); n > 0 {
		toast := m.snap.Toasts[n-1]
		left = append(left, styles.ToastStyle(toast.Severity).Render(toast.Message))
	}

	right := m.Help.View(Keys)
	return joinEnds(strings.Join(left, "  "), right, m.Width)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Keys"),
		m.Help.FullHelpView(Keys.FullHelp()),
		"",
		styles.DimStyle.Render("Press any key to return..."),
	)

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}

// joinEnds lays out left and right on one line of the given width. The
// right side is dropped when both do not fit.
func joinEnds(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left, width)
	}
	return left + strings.Repeat(" ", gap) + right
}
