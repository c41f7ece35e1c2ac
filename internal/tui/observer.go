package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/curator/internal/dashboard"
)

// listenForChangesCmd waits for the next controller change. The model
// re-issues it after every StateChangedMsg, so at most one listener runs.
func listenForChangesCmd(obs *dashboard.ChannelObserver) tea.Cmd {
	return func() tea.Msg {
		<-obs.C()
		return StateChangedMsg{}
	}
}
