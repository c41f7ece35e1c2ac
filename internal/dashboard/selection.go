package dashboard

// ToggleSelection adds id to the selection, or removes it when present
func (c *Controller) ToggleSelection(id string) {
	c.mu.Lock()
	if _, ok := c.selected[id]; ok {
		c.deselectLocked(id)
	} else {
		c.selected[id] = struct{}{}
		c.selOrder = append(c.selOrder, id)
	}
	c.mu.Unlock()
	c.notify()
}

// Select adds ids to the selection. Ids already selected stay selected.
func (c *Controller) Select(ids ...string) {
	c.mu.Lock()
	for _, id := range ids {
		if _, ok := c.selected[id]; !ok {
			c.selected[id] = struct{}{}
			c.selOrder = append(c.selOrder, id)
		}
	}
	c.mu.Unlock()
	c.notify()
}

// SelectAll selects every torrent of the active view; when all of them are
// already selected it clears the selection instead.
func (c *Controller) SelectAll() {
	c.mu.Lock()
	view := c.views[c.filter]
	all := len(view) > 0
	for _, t := range view {
		if _, ok := c.selected[t.ID]; !ok {
			all = false
			break
		}
	}
	if all {
		c.clearSelectionLocked()
	} else {
		for _, t := range view {
			if _, ok := c.selected[t.ID]; !ok {
				c.selected[t.ID] = struct{}{}
				c.selOrder = append(c.selOrder, t.ID)
			}
		}
	}
	c.mu.Unlock()
	c.notify()
}

// ClearSelection empties the selection
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.clearSelectionLocked()
	c.mu.Unlock()
	c.notify()
}

// Selected returns the selection in the order ids were added
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.selOrder...)
}

func (c *Controller) deselectLocked(id string) {
	if _, ok := c.selected[id]; !ok {
		return
	}
	delete(c.selected, id)
	for i, sel := range c.selOrder {
		if sel == id {
			c.selOrder = append(c.selOrder[:i:i], c.selOrder[i+1:]...)
			break
		}
	}
}

func (c *Controller) clearSelectionLocked() {
	c.selected = make(map[string]struct{})
	c.selOrder = nil
}
