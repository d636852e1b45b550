package comm

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
)

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// ClockConn provides base implementation for ctl.Conn using Pipe.
type ClockConn struct {
	Expiration time.Duration

	pipe     Pipe
	eventCh  chan ctl.Message
	seq      uint32
	commands list.List
	seqMap   map[uint32]*commandFuture
	lock     sync.Mutex
}

// Init initializes ClockConn with defaults.
func (c *ClockConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.eventCh = make(chan ctl.Message, 16)
	c.seqMap = make(map[uint32]*commandFuture)
}

// EventChan retrieves the chan delivering events from the agent.
func (c *ClockConn) EventChan() <-chan ctl.Message {
	return c.eventCh
}

// DoCommand implements Conn.
func (c *ClockConn) DoCommand(msg ctl.Message) ctl.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	f := &commandFuture{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan ctl.Result, 1),
	}
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.result <- ctl.Result{Err: err}
		return f
	}
	f.elem = c.commands.PushBack(f)
	c.seqMap[f.seq] = f
	return f
}

// Run implements Runnable, processing the pipe and expiring commands
// without result.
func (c *ClockConn) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.pipe.Run(ctx)
	}()
	ticker := time.NewTicker(c.Expiration)
	defer ticker.Stop()
	for {
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			c.pipe.Close()
			return ctx.Err()
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func (c *ClockConn) handleTypedMsg(ctx context.Context, msg ctl.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		select {
		case c.eventCh <- msg:
		default:
			// slow consumer, drop the event
		}
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	f := c.seqMap[typed.Sequence]
	if f == nil {
		return nil
	}
	c.commands.Remove(f.elem)
	delete(c.seqMap, typed.Sequence)
	result := ctl.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.result <- result
	close(f.result)
	return nil
}

func (c *ClockConn) purgeExpired() {
	now := time.Now()
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.commands.Len() > 0 {
		elem := c.commands.Front()
		f := elem.Value.(*commandFuture)
		if f.expireAt.After(now) {
			break
		}
		c.commands.Remove(elem)
		delete(c.seqMap, f.seq)
		f.result <- ctl.Result{Err: context.DeadlineExceeded}
		close(f.result)
	}
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan ctl.Result
}

func (c *commandFuture) ResultChan() <-chan ctl.Result {
	return c.result
}
