package dashboard

// Observer is notified after the controller's state changes. OnChange is
// called from whichever goroutine made the change and must not block or
// call back into the controller synchronously.
type Observer interface {
	OnChange()
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func()

// OnChange calls f
func (f ObserverFunc) OnChange() { f() }

// ChannelObserver adapts Observer to a channel (non-blocking; a full channel
// already carries a pending change).
type ChannelObserver struct {
	ch chan struct{}
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan struct{}, 1)}
}

// OnChange signals the channel (non-blocking if full).
func (o *ChannelObserver) OnChange() {
	select {
	case o.ch <- struct{}{}:
	default:
	}
}

// C returns the channel that receives change signals
func (o *ChannelObserver) C() <-chan struct{} {
	return o.ch
}
