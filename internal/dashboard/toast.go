package dashboard

import (
	"time"

	"github.com/mmcdole/curator/internal/domain"
)

// Toast shows a notification for the toast duration
func (c *Controller) Toast(severity domain.Severity, message string) {
	c.mu.Lock()
	c.nextToastID++
	c.toasts = append(c.toasts, domain.Toast{
		ID:       c.nextToastID,
		Message:  message,
		Severity: severity,
		Expiry:   c.now().Add(c.toastDuration),
	})
	c.mu.Unlock()
	c.notify()
}

// Toasts returns the live toasts, oldest first
func (c *Controller) Toasts() []domain.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneToastsLocked()
	return append([]domain.Toast(nil), c.toasts...)
}

// DismissToast removes a toast before it expires
func (c *Controller) DismissToast(id int) {
	c.mu.Lock()
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i:i], c.toasts[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.notify()
}

// NextToastExpiry returns when the oldest live toast lapses
func (c *Controller) NextToastExpiry() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneToastsLocked()
	if len(c.toasts) == 0 {
		return time.Time{}, false
	}
	next := c.toasts[0].Expiry
	for _, t := range c.toasts[1:] {
		if t.Expiry.Before(next) {
			next = t.Expiry
		}
	}
	return next, true
}

func (c *Controller) pruneToastsLocked() {
	now := c.now()
	live := c.toasts[:0]
	for _, t := range c.toasts {
		if !t.Expired(now) {
			live = append(live, t)
		}
	}
	// Drop references held by the tail of the backing array
	for i := len(live); i < len(c.toasts); i++ {
		c.toasts[i] = domain.Toast{}
	}
	c.toasts = live
}
