package dashboard

import (
	"context"
	"time"
)

// SetAutoRefresh starts or stops the periodic refresh. Enabling refreshes
// immediately, then re-fetches the active view every refresh interval.
// Disabling returns only after the loop has exited, so no fetch starts
// after it returns.
func (c *Controller) SetAutoRefresh(enabled bool) {
	c.setAutoRefresh(enabled, true)
}

// AutoRefresh reports whether the timer is running
func (c *Controller) AutoRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoRefresh
}

func (c *Controller) setAutoRefresh(enabled, persist bool) {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	running := c.stopLoop != nil
	if enabled == running {
		return
	}

	if enabled {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		c.stopLoop, c.loopDone = cancel, done
		go c.autoRefreshLoop(ctx, done)
	} else {
		c.stopLoop()
		<-c.loopDone
		c.stopLoop, c.loopDone = nil, nil
	}

	c.mu.Lock()
	c.autoRefresh = enabled
	c.mu.Unlock()

	c.logger.Info("auto-refresh toggled", "enabled", enabled, "interval", c.refreshInterval)
	if persist {
		c.savePreferences()
	}
	c.notify()
}

func (c *Controller) autoRefreshLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	c.Refresh(ctx)

	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Both cases may be ready at once; cancellation wins.
			if ctx.Err() != nil {
				return
			}
			c.FetchTorrents(ctx, c.Filter())
		}
	}
}
