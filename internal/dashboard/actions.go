package dashboard

import (
	"context"
	"fmt"

	"github.com/mmcdole/curator/internal/domain"
)

// BulkResult is the outcome of a bulk action
type BulkResult struct {
	Succeeded int
	Total     int
}

// Approve approves one torrent. On success the pending and approved views
// are re-fetched; on failure nothing changes locally and one error toast is
// emitted. It reports whether the backend accepted the change.
func (c *Controller) Approve(ctx context.Context, id string) bool {
	return c.act(ctx, id, domain.ActionApprove)
}

// Reject rejects one torrent, with the same semantics as Approve
func (c *Controller) Reject(ctx context.Context, id string) bool {
	return c.act(ctx, id, domain.ActionReject)
}

// BulkApprove approves every selected torrent, one at a time
func (c *Controller) BulkApprove(ctx context.Context) BulkResult {
	return c.bulk(ctx, domain.ActionApprove)
}

// BulkReject rejects every selected torrent, one at a time
func (c *Controller) BulkReject(ctx context.Context) BulkResult {
	return c.bulk(ctx, domain.ActionReject)
}

func (c *Controller) act(ctx context.Context, id string, action domain.Action) bool {
	if err := c.transition(ctx, id, action); err != nil {
		return false
	}

	c.Toast(domain.SeveritySuccess, fmt.Sprintf("Torrent %s!", string(action.Target())))
	c.refetchAfter(ctx, action)
	return true
}

// transition performs the POST for one torrent, records the outcome and
// emits an error toast on failure. Successful ids leave the selection.
func (c *Controller) transition(ctx context.Context, id string, action domain.Action) error {
	c.beginWork()
	defer c.endWork()

	var err error
	switch action {
	case domain.ActionApprove:
		err = c.repo.Approve(ctx, id)
	default:
		err = c.repo.Reject(ctx, id)
	}

	title := c.lookupTitle(id)
	c.record(id, title, action, err)

	if err != nil {
		c.fail(err, fmt.Sprintf("Failed to %s torrent", action), "id", id, "title", title)
		return err
	}

	c.logger.Info("torrent "+string(action.Target()), "id", id, "title", title)

	c.mu.Lock()
	c.deselectLocked(id)
	c.mu.Unlock()
	return nil
}

func (c *Controller) bulk(ctx context.Context, action domain.Action) BulkResult {
	ids := c.Selected()
	if len(ids) == 0 {
		c.Toast(domain.SeverityInfo, "No torrents selected")
		return BulkResult{}
	}

	result := BulkResult{Total: len(ids)}
	for _, id := range ids {
		if err := c.transition(ctx, id, action); err == nil {
			result.Succeeded++
		}
	}

	severity := domain.SeverityInfo
	switch result.Succeeded {
	case result.Total:
		severity = domain.SeveritySuccess
	case 0:
		severity = domain.SeverityError
	}
	c.Toast(severity, fmt.Sprintf("%s %d/%d", action.PastTense(), result.Succeeded, result.Total))

	c.logger.Info("bulk action finished", "action", action, "succeeded", result.Succeeded, "total", result.Total)

	if result.Succeeded > 0 {
		c.ClearSelection()
		c.refetchAfter(ctx, action)
	}
	return result
}

// refetchAfter reloads the views an action moved torrents between
func (c *Controller) refetchAfter(ctx context.Context, action domain.Action) {
	c.FetchTorrents(ctx, domain.StatusPending)
	c.FetchTorrents(ctx, action.Target())
}

func (c *Controller) lookupTitle(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, view := range c.views {
		for _, t := range view {
			if t.ID == id {
				return t.Title
			}
		}
	}
	return ""
}

func (c *Controller) record(id, title string, action domain.Action, err error) {
	if c.history == nil || isCanceled(err) {
		return
	}
	activity := domain.Activity{
		TorrentID: id,
		Title:     title,
		Action:    action,
		At:        c.now(),
		OK:        err == nil,
	}
	if err != nil {
		activity.Error = err.Error()
	}
	if recErr := c.history.Record(activity); recErr != nil {
		c.logger.Warn("failed to record activity", "id", id, "error", recErr)
	}
}
