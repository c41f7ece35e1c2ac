package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/curator/internal/config"
	"github.com/mmcdole/curator/internal/curatorapi"
	"github.com/mmcdole/curator/internal/logging"
	"github.com/mmcdole/curator/internal/tui/styles"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file for a curator backend",
		Long: `Prompt for the curator API URL, check that it answers, and save it
to config.yaml (the --config path, or ~/.config/curator/config.yaml).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return runSetupFlow(cmd, a, opts)
		},
	}
}

// runSetupFlow asks for the API URL until a backend answers, then saves it
func runSetupFlow(cmd *cobra.Command, a *app, opts *rootOptions) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Welcome to curator!")
	fmt.Fprintln(out)

	cfg := *a.cfg
	for {
		fmt.Fprintf(out, "Curator API URL [%s]: ", cfg.API.URL)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if url := strings.TrimSpace(input); url != "" {
			cfg.API.URL = url
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "%s %v\n\n", styles.ErrorStyle.Render("✗"), err)
			continue
		}

		fmt.Fprintln(out)
		if err := checkHealthWithSpinner(cmd.Context(), out, cfg.API.URL, cfg.API.Timeout); err != nil {
			fmt.Fprintf(out, "\n%s Could not reach curator: %v\n", styles.ErrorStyle.Render("✗"), err)
			fmt.Fprintln(out, "Please check the URL and try again.")
			fmt.Fprintln(out)
			continue
		}
		break
	}

	dir := config.DefaultConfigDir()
	if opts.configPath != "" {
		dir = filepath.Dir(opts.configPath)
	}
	path, err := config.SaveConfig(a.viper, &cfg, dir)
	if err != nil {
		return err
	}

	a.logger.Info("config saved", "path", path, "api", cfg.API.URL)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s Configuration saved to %s\n", styles.SuccessStyle.Render("✓"), path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run curator again to open the dashboard.")
	return nil
}

// checkHealthWithSpinner calls /api/health with a visual spinner
func checkHealthWithSpinner(ctx context.Context, out io.Writer, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client := curatorapi.NewClient(url, timeout, logging.NullLogger())

	// Channel to receive result
	type result struct {
		status string
		err    error
	}
	resultCh := make(chan result, 1)

	// Start the check in background
	go func() {
		status, err := client.Health(ctx)
		resultCh <- result{status, err}
	}()

	frame := 0
	fmt.Fprintf(out, "\r%s Checking curator...", spinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Fprint(out, clearSpinnerLine)
			if res.err != nil {
				return res.err
			}
			fmt.Fprintf(out, "%s Curator reports %q\n", styles.SuccessStyle.Render("✓"), res.status)
			return nil

		case <-ticker.C:
			frame++
			fmt.Fprintf(out, "\r%s Checking curator...", spinnerFrames[frame%len(spinnerFrames)])

		case <-ctx.Done():
			fmt.Fprint(out, clearSpinnerLine)
			return fmt.Errorf("health check timed out")
		}
	}
}
