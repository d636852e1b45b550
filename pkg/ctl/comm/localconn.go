package comm

import (
	"context"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
)

// LocalConn implements ctl.Conn by invoking a CommandHandler in
// process, with no transport in between. It is used for direct
// sessions over a locally attached bridge.
type LocalConn struct {
	Context context.Context
	Handler ctl.CommandHandler
}

// NewLocalConn creates a LocalConn.
func NewLocalConn(ctx context.Context, handler ctl.CommandHandler) *LocalConn {
	return &LocalConn{Context: ctx, Handler: handler}
}

// DoCommand implements Conn.
func (c *LocalConn) DoCommand(msg ctl.Message) ctl.CommandFuture {
	f := &commandFuture{result: make(chan ctl.Result, 1)}
	go func() {
		cmd := &localCommand{msg: msg, result: f.result}
		if err := c.Handler.HandleCommand(c.Context, cmd); err != nil {
			cmd.Done(msgs.NewCommandErr(err))
		}
	}()
	return f
}

type localCommand struct {
	msg    ctl.Message
	result chan ctl.Result
	done   bool
}

func (c *localCommand) Msg() ctl.Message {
	return c.msg
}

func (c *localCommand) Done(msg ctl.Message) error {
	if c.done {
		return nil
	}
	c.done = true
	result := ctl.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	c.result <- result
	close(c.result)
	return nil
}
