package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mmcdole/curator/internal/dashboard"
	"github.com/mmcdole/curator/internal/domain"
	"github.com/mmcdole/curator/internal/search"
	"github.com/mmcdole/curator/internal/tui/styles"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var title string

	command := &cobra.Command{
		Use:   "list [pending|approved|rejected]",
		Short: "List staged torrents of one status",
		Long: `List staged torrents of one status as a table.

The status defaults to dashboard.default_status. --title keeps only
torrents whose title fuzzily matches the query, ignoring case and the
dots, dashes and underscores of release names.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			status := a.cfg.DefaultStatus()
			if len(args) == 1 {
				if status, err = domain.ParseStatus(args[0]); err != nil {
					return err
				}
			}

			torrents, err := a.client.ListTorrents(cmd.Context(), status)
			if err != nil {
				return fmt.Errorf("failed to load torrents: %w", err)
			}

			rows := make([][]string, 0, len(torrents))
			for _, t := range torrents {
				if t.Status != status || !search.MatchTitle(title, t.Title) {
					continue
				}
				rows = append(rows, []string{t.ID, t.Title, dashboard.ReleaseSummary(t.Title), dashboard.FormatSize(t.Size), t.MatchReason})
			}

			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s torrents\n", status)
				return nil
			}

			tbl := newTable("ID", "TITLE", "RELEASE", "SIZE", "MATCH REASON").Rows(rows...)
			fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
			fmt.Fprintln(cmd.OutOrStdout(), styles.DimStyle.Render(fmt.Sprintf("%d %s", len(rows), status)))
			return nil
		},
	}

	command.Flags().StringVar(&title, "title", "", "fuzzy title filter")

	return command
}

// newActionCommand builds the approve and reject subcommands. One id is a
// single action; several ids run as a bulk action over that selection.
func newActionCommand(opts *rootOptions, name string) *cobra.Command {
	action := domain.Action(name)

	return &cobra.Command{
		Use:   name + " <id>...",
		Short: action.Title() + " pending torrents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl := a.newController(false)
			defer ctrl.Close()

			ids := uniqueIDs(args)

			var failed int
			if len(ids) == 1 {
				var ok bool
				if action == domain.ActionApprove {
					ok = ctrl.Approve(cmd.Context(), ids[0])
				} else {
					ok = ctrl.Reject(cmd.Context(), ids[0])
				}
				if !ok {
					failed = 1
				}
			} else {
				ctrl.Select(ids...)
				var result dashboard.BulkResult
				if action == domain.ActionApprove {
					result = ctrl.BulkApprove(cmd.Context())
				} else {
					result = ctrl.BulkReject(cmd.Context())
				}
				failed = result.Total - result.Succeeded
			}

			printToasts(cmd, ctrl.Toasts())

			if failed > 0 {
				return fmt.Errorf("%d of %d torrents could not be %s", failed, len(ids), action.Target())
			}
			return nil
		},
	}
}

func newOpenCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open a torrent's link with the configured program",
		Long: `Open a torrent's link (magnet or web page) with dashboard.open_command,
or the system handler when no command is configured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := findTorrent(cmd, a, args[0])
			if err != nil {
				return err
			}
			if err := a.launcher().Open(t); err != nil {
				return fmt.Errorf("failed to open %s: %w", t.Title, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessStyle.Render("✓")+" Opened "+t.Title)
			return nil
		},
	}
}

// findTorrent looks id up in every status view
func findTorrent(cmd *cobra.Command, a *app, id string) (domain.Torrent, error) {
	for _, status := range domain.AllStatuses {
		torrents, err := a.client.ListTorrents(cmd.Context(), status)
		if err != nil {
			return domain.Torrent{}, fmt.Errorf("failed to load torrents: %w", err)
		}
		for _, t := range torrents {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return domain.Torrent{}, fmt.Errorf("%w: %s", domain.ErrTorrentNotFound, id)
}

// uniqueIDs drops repeated ids, keeping the first occurrence
func uniqueIDs(args []string) []string {
	seen := make(map[string]bool, len(args))
	ids := make([]string, 0, len(args))
	for _, id := range args {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the curator backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.client.Health(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrServerOffline) {
					return fmt.Errorf("curator at %s is unreachable: %w", a.cfg.API.URL, err)
				}
				return err
			}

			if status != "ok" && status != "healthy" {
				fmt.Fprintln(cmd.OutOrStdout(), styles.ErrorStyle.Render(dashboard.HealthIssues.String()+" "+status))
				return fmt.Errorf("curator reports %q", status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessStyle.Render(dashboard.HealthOK.String())+" "+styles.DimStyle.Render(a.cfg.API.URL))
			return nil
		},
	}
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int

	command := &cobra.Command{
		Use:   "history",
		Short: "Show approve/reject actions taken from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.store.RecentActivity(limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No actions recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				result := "ok"
				if !r.OK {
					result = "failed: " + r.Error
				}
				rows = append(rows, []string{
					r.At.Local().Format("2006-01-02 15:04:05"),
					humanize.Time(r.At),
					string(r.Action),
					r.TorrentID,
					r.Title,
					result,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), newTable("TIME", "AGE", "ACTION", "ID", "TITLE", "RESULT").Rows(rows...).Render())
			return nil
		},
	}

	command.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show (0 for all)")

	return command
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of curator",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "curator "+Version)
		},
	}
}

// newTable returns a table in the dashboard palette
func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(styles.Accent).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.DimStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printToasts(cmd *cobra.Command, toasts []domain.Toast) {
	for _, t := range toasts {
		var mark string
		switch t.Severity {
		case domain.SeveritySuccess:
			mark = styles.SuccessStyle.Render("✓")
		case domain.SeverityError:
			mark = styles.ErrorStyle.Render("✗")
		default:
			mark = styles.DimStyle.Render("•")
		}
		fmt.Fprintln(cmd.OutOrStdout(), mark+" "+t.Message)
	}
}
