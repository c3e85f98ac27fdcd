package transform

import (
	"sync"
)

// RunCloser tracks the channels used to maintain run status and whether it is shutdown or not.
type RunCloser struct {
	closed       bool
	mu           sync.Mutex
	chanStatus   chan RunStatus
	chanShutdown chan error
}

func NewRunCloser(chanStatus chan RunStatus, chanShutdown chan error) *RunCloser {
	return &RunCloser{chanStatus: chanStatus, chanShutdown: chanShutdown}
}

// SendStatus sends s unless the channels are already closed.
func (c *RunCloser) SendStatus(s RunStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.chanStatus <- s
	}
}

// CloseChannels sends the final status, if any, and closes chanStatus and chanShutdown once.
func (c *RunCloser) CloseChannels(statusToSend *RunStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if statusToSend != nil {
		c.chanStatus <- *statusToSend
	}
	close(c.chanStatus) // causes the status consumer to exit.
	close(c.chanShutdown)
	c.closed = true
}

func (c *RunCloser) ChannelsAreOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// RequestShutdown asks a running run to stop. It returns false if the run has already finished.
func (c *RunCloser) RequestShutdown(reason error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.chanShutdown <- reason:
	default: // a request is already pending.
	}
	return true
}
