package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/curator/internal/dashboard"
	"github.com/mmcdole/curator/internal/domain"
	"github.com/mmcdole/curator/internal/search"
	"github.com/mmcdole/curator/internal/tui/styles"
)

// Layout constants for the torrent list
const (
	// Each torrent takes a title line and a match reason line
	ItemHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2

	// Right-aligned size column
	SizeColumnWidth = 10
)

// TorrentList is a scrollable, filterable list of one status view
type TorrentList struct {
	torrents []domain.Torrent
	matches  []search.Match // visible rows, after the fuzzy filter
	selected map[string]bool
	status   domain.Status
	loaded   bool

	// Cursor
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string

	keys ListKeyMap
}

// NewTorrentList creates an empty list
func NewTorrentList() *TorrentList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)

	return &TorrentList{
		selected:    make(map[string]bool),
		status:      domain.StatusPending,
		filterInput: ti,
		keys:        DefaultListKeyMap(),
	}
}

// SetItems replaces the list contents. The cursor follows the torrent it was
// on when that torrent is still present.
func (l *TorrentList) SetItems(status domain.Status, torrents []domain.Torrent, loaded bool) {
	var currentID string
	if t := l.SelectedTorrent(); t != nil && status == l.status {
		currentID = t.ID
	}

	if status != l.status {
		l.cursor = 0
		l.offset = 0
	}
	l.status = status
	l.torrents = torrents
	l.loaded = loaded
	l.matches = search.FilterTorrents(l.filterQuery, torrents)

	if currentID != "" {
		for i, m := range l.matches {
			if m.Torrent.ID == currentID {
				l.cursor = i
				break
			}
		}
	}
	l.clampCursor()
}

// SetSelected marks the ids checked for bulk actions
func (l *TorrentList) SetSelected(ids []string) {
	l.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		l.selected[id] = true
	}
}

// SetSize sets the list dimensions
func (l *TorrentList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// SelectedTorrent returns the torrent under the cursor
func (l *TorrentList) SelectedTorrent() *domain.Torrent {
	if l.cursor < 0 || l.cursor >= len(l.matches) {
		return nil
	}
	t := l.matches[l.cursor].Torrent
	return &t
}

// Cursor returns the cursor position among visible rows
func (l *TorrentList) Cursor() int {
	return l.cursor
}

// ItemCount returns the number of visible rows
func (l *TorrentList) ItemCount() int {
	return len(l.matches)
}

// VisibleIDs returns the ids of the visible rows in display order
func (l *TorrentList) VisibleIDs() []string {
	ids := make([]string, len(l.matches))
	for i, m := range l.matches {
		ids[i] = m.Torrent.ID
	}
	return ids
}

// ToggleFilter activates the filter input
func (l *TorrentList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *TorrentList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *TorrentList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *TorrentList) ClearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.matches = search.FilterTorrents("", l.torrents)
	l.recalcMaxVisible()
	l.clampCursor()
}

// Update handles navigation and filter typing
func (l *TorrentList) Update(msg tea.Msg) tea.Cmd {
	keyMsg, isKey := msg.(tea.KeyMsg)

	// Typing into the filter
	if l.IsFilterTyping() {
		if isKey {
			switch {
			case key.Matches(keyMsg, l.keys.Escape):
				l.ClearFilter()
				return nil
			case key.Matches(keyMsg, l.keys.Enter):
				// Accept filter, blur input to allow navigation
				l.filterInput.Blur()
				return nil
			case keyMsg.Type == tea.KeyBackspace && l.filterInput.Value() == "":
				l.ClearFilter()
				return nil
			}
		}

		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	if !isKey {
		return nil
	}

	if l.filterActive {
		switch {
		case key.Matches(keyMsg, l.keys.Escape):
			l.ClearFilter()
			return nil
		case key.Matches(keyMsg, l.keys.Filter):
			l.filterInput.Focus()
			return nil
		}
	}

	count := len(l.matches)
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, l.keys.Down):
		if l.cursor < count-1 {
			l.cursor++
		}
	case key.Matches(keyMsg, l.keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(keyMsg, l.keys.Home):
		l.cursor = 0
	case key.Matches(keyMsg, l.keys.End):
		l.cursor = count - 1
	case key.Matches(keyMsg, l.keys.HalfDown):
		l.cursor += max(l.maxVisible/2, 1)
	case key.Matches(keyMsg, l.keys.HalfUp):
		l.cursor -= max(l.maxVisible/2, 1)
	}
	l.clampCursor()
	return nil
}

// View renders the list
func (l *TorrentList) View() string {
	width := max(l.width, 20)

	var content string
	switch {
	case !l.loaded:
		content = styles.DimStyle.Render("Loading...")
	case len(l.matches) == 0 && l.filterQuery != "":
		content = styles.DimStyle.Render("No matches")
	case len(l.matches) == 0:
		content = styles.DimStyle.Render(fmt.Sprintf("No %s torrents", l.status))
	default:
		content = l.renderRows(width)
	}

	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}

	return lipgloss.NewStyle().Width(width).Height(max(l.height, 1)).Render(content)
}

// Internal methods

func (l *TorrentList) applyFilter() {
	query := l.filterInput.Value()
	if query == l.filterQuery {
		return
	}
	l.filterQuery = query
	l.matches = search.FilterTorrents(query, l.torrents)

	// Reset cursor to first match
	l.cursor = 0
	l.offset = 0
}

func (l *TorrentList) recalcMaxVisible() {
	lines := l.height - ScrollIndicatorLines
	if l.filterActive {
		lines--
	}
	l.maxVisible = lines / ItemHeight
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *TorrentList) clampCursor() {
	if l.cursor >= len(l.matches) {
		l.cursor = len(l.matches) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureVisible()
}

func (l *TorrentList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
	if l.offset > 0 && l.offset+l.maxVisible > len(l.matches) {
		l.offset = max(len(l.matches)-l.maxVisible, 0)
	}
}

func (l *TorrentList) renderRows(width int) string {
	count := len(l.matches)
	end := min(l.offset+l.maxVisible, count)

	// ALWAYS reserve space for the indicators to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	lines := []string{header}
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderItem(l.matches[i], i == l.cursor, width)...)
	}
	lines = append(lines, footer)
	return strings.Join(lines, "\n")
}

func (l *TorrentList) renderItem(m search.Match, focused bool, width int) []string {
	t := m.Torrent

	cursor := " "
	if focused {
		cursor = styles.CursorChar
	}
	mark, markFg := styles.UnselectedChar, styles.DimGray
	if l.selected[t.ID] {
		mark, markFg = styles.SelectedChar, styles.Accent
	}
	accent := styles.Accent

	size := fmt.Sprintf("%*s", SizeColumnWidth, dashboard.FormatSize(t.Size))

	// width - cursor(1) - space(1) - mark(1) - space(1) - size - margins(2)
	titleWidth := max(width-6-SizeColumnWidth, 5)
	title := styles.Pad(styles.Truncate(t.Title, titleWidth), titleWidth)

	parts := []styles.RowPart{
		{Text: cursor + " ", Foreground: &accent},
		{Text: mark + " ", Foreground: &markFg},
	}
	parts = append(parts, highlightParts(title, m.MatchedIndexes)...)
	parts = append(parts, styles.RowPart{Text: size})

	dim := styles.DimGray
	reason := t.MatchReason
	if reason == "" {
		reason = "no match reason"
	}
	if release := dashboard.ReleaseSummary(t.Title); release != "" {
		reason = release + "  " + reason
	}
	reasonParts := []styles.RowPart{
		{Text: "    " + styles.Truncate(reason, width-6), Foreground: &dim},
	}

	return []string{
		styles.RenderListRow(parts, focused, width),
		styles.RenderListRow(reasonParts, focused, width),
	}
}

// highlightParts splits title into runs so matched bytes render in the accent color
func highlightParts(title string, matched []int) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}

	hit := make(map[int]bool, len(matched))
	for _, idx := range matched {
		hit[idx] = true
	}

	accent := styles.Accent
	var parts []styles.RowPart
	var run strings.Builder
	runHit := false

	flush := func() {
		if run.Len() == 0 {
			return
		}
		part := styles.RowPart{Text: run.String()}
		if runHit {
			part.Foreground = &accent
			part.Bold = true
		}
		parts = append(parts, part)
		run.Reset()
	}

	for i, r := range title {
		if hit[i] != runHit {
			flush()
			runHit = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}

func (l *TorrentList) renderFilterBar() string {
	input := l.filterInput.View()
	if l.filterQuery == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", len(l.matches), len(l.torrents)))
}
