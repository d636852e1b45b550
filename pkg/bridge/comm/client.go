package comm

import (
	"context"
	"sync"
)

// Result is the result of a command using Do.
type Result struct {
	Err  error
	Code byte
	Data []byte
}

// Command represents a pending command waiting for reply.
type Command struct {
	requestSeq Seq
	resultCh   chan Result
}

// RequestSeq returns the request frame seq.
func (c *Command) RequestSeq() Seq {
	return c.requestSeq
}

// ResultChan returns the chan to retrieve result.
func (c *Command) ResultChan() <-chan Result {
	return c.resultCh
}

// Client provides host side operations over a Link. Replies resolve
// pending commands in request order; a reply skipping over earlier
// commands fails those with ErrNoReply.
type Client struct {
	link    *Link
	eventCh chan *Frame
	stateCh chan SyncState

	pending []*Command
	lock    sync.Mutex
}

// NewClient creates client and wraps the link.
func NewClient(link *Link) *Client {
	c := &Client{
		link:    link,
		eventCh: make(chan *Frame, 1),
		stateCh: make(chan SyncState, 1),
	}
	c.link.Handler = c
	c.link.Notifier = StateChangedFunc(func(ctx context.Context, state SyncState) {
		c.stateCh <- state
	})
	return c
}

// Link gets wrapped Link.
func (c *Client) Link() *Link {
	return c.link
}

// StateChan retrieves the state reporting chan.
func (c *Client) StateChan() <-chan SyncState {
	return c.stateCh
}

// EventChan retrieves the event reporting chan.
func (c *Client) EventChan() <-chan *Frame {
	return c.eventCh
}

// DoWith sends a command and expects a result in the provided chan.
func (c *Client) DoWith(frm *Frame, ch chan Result) *Command {
	cmd := &Command{resultCh: ch}

	c.lock.Lock()
	defer c.lock.Unlock()
	err := c.link.Send(frm)
	cmd.requestSeq = frm.Seq
	if err != nil {
		cmd.resultCh <- Result{Err: err}
		return cmd
	}
	c.pending = append(c.pending, cmd)
	return cmd
}

// Do sends a command and returns a Command for result.
func (c *Client) Do(frm *Frame) *Command {
	return c.DoWith(frm, make(chan Result, 1))
}

// take removes the pending command matching seq, together with any
// commands queued before it.
func (c *Client) take(seq Seq) (matched *Command, skipped []*Command) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i, cmd := range c.pending {
		if cmd.requestSeq == seq {
			matched = cmd
			skipped = c.pending[:i]
			c.pending = c.pending[i+1:]
			return
		}
	}
	return
}

// HandleFrame implements FrameHandler.
func (c *Client) HandleFrame(ctx context.Context, frm *Frame) {
	if frm.Code&0x80 != 0 {
		c.eventCh <- frm
		return
	}
	if len(frm.Data) == 0 {
		// invalid reply frame
		return
	}
	seq := Seq(frm.Data[0])
	if !seq.IsValid() {
		return
	}
	matched, skipped := c.take(seq)
	if matched == nil {
		return
	}
	for _, cmd := range skipped {
		cmd.resultCh <- Result{Err: ErrNoReply}
	}
	if frm.Code&1 != 0 {
		matched.resultCh <- Result{Err: &CommandError{Status: (frm.Code >> 1) & 7}}
	} else {
		matched.resultCh <- Result{Code: (frm.Code >> 1) & 7, Data: frm.Data[1:]}
	}
}

// Run wraps Link.Run to implement Runnable.
func (c *Client) Run(ctx context.Context) error {
	return c.link.Run(ctx)
}
