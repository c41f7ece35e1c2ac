package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/curator/internal/tui/styles"
)

// ConfirmModal asks a yes/no question before an action is sent
type ConfirmModal struct {
	visible bool
	title   string
	body    string
}

// NewConfirmModal creates a hidden confirm modal
func NewConfirmModal() ConfirmModal {
	return ConfirmModal{}
}

// Show displays the modal with a title and a one-line body
func (m *ConfirmModal) Show(title, body string) {
	m.visible = true
	m.title = title
	m.body = body
}

// Hide dismisses the modal
func (m *ConfirmModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m ConfirmModal) IsVisible() bool {
	return m.visible
}

// Title returns the question being asked
func (m ConfirmModal) Title() string {
	return m.title
}

// View renders the confirm modal
func (m ConfirmModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 44

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.White).
		Bold(true).
		Width(modalWidth).
		Background(styles.SlateDark)

	bodyStyle := lipgloss.NewStyle().
		Foreground(styles.LightGray).
		Width(modalWidth).
		Background(styles.SlateDark)

	spacer := lipgloss.NewStyle().
		Width(modalWidth).
		Background(styles.SlateDark).
		Render("")

	hint := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center).
		Background(styles.SlateDark).
		Render(styles.HelpKeyStyle.Render("[Y]") + styles.HelpDescStyle.Render(" Yes      ") +
			styles.HelpKeyStyle.Render("[N]") + styles.HelpDescStyle.Render(" No"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		spacer,
		bodyStyle.Render(m.body),
		spacer,
		hint,
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Accent).
		Background(styles.SlateDark).
		Padding(1, 2).
		Render(content)
}
