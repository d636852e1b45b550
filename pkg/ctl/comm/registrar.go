package comm

import (
	"context"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
	fx "github.com/radioclk/si514.go/pkg/framework"
)

// Registrar implements ctl.Registrar with Pipe, dispatching received
// commands to a CommandHandler.
type Registrar struct {
	pipe    Pipe
	handler ctl.CommandHandler
}

// Init initializes the Registrar with defaults.
func (r *Registrar) Init(rw PacketReadWriter, handler ctl.CommandHandler) {
	r.handler = handler
	r.pipe.ReadWriter = rw
	r.pipe.Handler = msgs.HandleTypedMsgFunc(func(ctx context.Context, msg ctl.Message, typed *msgs.Typed) error {
		if !typed.IsCommand() {
			return nil
		}
		cmd := &command{seq: typed.Sequence, msg: msg, pipe: &r.pipe}
		var err error
		if h := r.handler; h != nil {
			err = h.HandleCommand(ctx, cmd)
		} else {
			err = msgs.ErrUnsupportedCommand
		}
		if err != nil {
			return cmd.Done(msgs.NewCommandErr(err))
		}
		return nil
	})
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg ctl.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	return r.pipe.Run(ctx)
}

type command struct {
	seq  uint32
	msg  ctl.Message
	pipe *Pipe
}

func (c *command) Msg() ctl.Message {
	return c.msg
}

func (c *command) Done(msg ctl.Message) error {
	return c.pipe.SendCommandMsg(msg, c.seq)
}

// RegistrarMux fans out events to multiple Registrars.
type RegistrarMux struct {
	Registrars []ctl.Registrar
}

// SendEvent implements Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg ctl.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...ctl.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// Remove removes a registrar previously added.
func (r *RegistrarMux) Remove(reg ctl.Registrar) {
	for i, item := range r.Registrars {
		if item == reg {
			r.Registrars = append(r.Registrars[:i], r.Registrars[i+1:]...)
			return
		}
	}
}
