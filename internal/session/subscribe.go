package session

// Subscribe returns a channel receiving every new view, and a function that
// ends the subscription and closes the channel. A subscriber that falls
// more than buffer views behind misses the views that do not fit.
func (c *Controller) Subscribe(buffer int) (<-chan View, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan View, buffer)

	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if sub, ok := c.subs[id]; ok {
			close(sub)
			delete(c.subs, id)
		}
	}
	return ch, cancel
}

// publish delivers v to every subscriber without blocking.
func (c *Controller) publish(v View) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for id, ch := range c.subs {
		select {
		case ch <- v:
		default:
			c.logger.Debug("dropping view for slow subscriber", "subscriber", id, "generation", v.Generation)
		}
	}
}
