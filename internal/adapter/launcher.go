package adapter

import (
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Hellseher/go-shellquote"

	"github.com/mmcdole/curator/internal/domain"
)

// allowedSchemes are the link schemes handed to an external program
var allowedSchemes = map[string]bool{
	"magnet": true,
	"http":   true,
	"https":  true,
}

// Launcher opens torrent links in an external program
type Launcher struct {
	command  string   // configured command, empty for system default
	args     []string // additional arguments for the command
	parseErr error    // command could not be split into words
	logger   *slog.Logger

	// start runs a command without waiting for it; replaced in tests
	start func(name string, args ...string) error
}

// NewLauncher creates a Launcher. An empty command uses the system handler.
// The command is split with shell quoting rules, so "transmission-remote -a"
// works without open_args.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}

	l := &Launcher{
		logger: logger,
		start:  startCommand,
	}

	words, err := shellquote.Split(command)
	if err != nil {
		l.parseErr = fmt.Errorf("invalid open_command %q: %w", command, err)
		logger.Warn("failed to parse open command", "command", command, "error", err)
		return l
	}
	if len(words) > 0 {
		l.command = words[0]
		l.args = append(words[1:], args...)
	}
	return l
}

// startCommand launches the program asynchronously
func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

// Open launches the torrent's link
func (l *Launcher) Open(t domain.Torrent) error {
	link := strings.TrimSpace(t.Link)
	if link == "" {
		return domain.ErrNoLink
	}
	if err := validateLink(link); err != nil {
		return err
	}
	if l.parseErr != nil {
		return l.parseErr
	}

	// Tier 1: User configured a specific program
	if l.command != "" {
		args := append(append([]string{}, l.args...), link)
		l.logger.Info("opening link with configured command", "command", l.command, "id", t.ID)
		return l.start(l.command, args...)
	}

	// Tier 2: System default (open/xdg-open/start)
	name, args := defaultCommand(runtime.GOOS, link)
	l.logger.Info("opening link with system default", "os", runtime.GOOS, "id", t.ID)
	return l.start(name, args...)
}

// validateLink rejects links that are not magnet or web URLs
func validateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnsupportedLink, err)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return fmt.Errorf("%w: scheme %q", domain.ErrUnsupportedLink, u.Scheme)
	}
	return nil
}

// defaultCommand returns the system handler invocation for a link
func defaultCommand(goos, link string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "cmd", []string{"/c", "start", "", link}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{link}
	}
}
