package comm

import (
	"context"
	"io"
	"sync"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
)

// Pipe pumps Typed messages in both directions over a packet
// transport, dispatching inbound messages to Handler.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe over the packet transport.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// SendCommandMsg sends a command or a command reply with a sequence.
func (p *Pipe) SendCommandMsg(msg ctl.Message, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsCommand() {
		panic("message is not a command")
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendEventMsg sends an event.
func (p *Pipe) SendEventMsg(msg ctl.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsEvent() {
		panic("message is not an event")
	}
	return p.SendTyped(typed)
}

// SendTyped sends a Typed message. Safe for concurrent use.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run implements Runnable, reading packets until the transport fails
// or is closed.
func (p *Pipe) Run(ctx context.Context) error {
	defer p.Close()
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			return err
		}
		if err = p.dispatch(ctx, pkt); err != nil {
			return err
		}
	}
}

func (p *Pipe) dispatch(ctx context.Context, pkt []byte) error {
	typed, err := msgs.DecodeTyped(pkt)
	if err != nil {
		return err
	}
	msg, err := typed.Decode()
	if err != nil {
		// an undecodable command still deserves a reply; anything
		// else is dropped
		if typed.IsCommand() {
			return p.SendCommandMsg(msgs.NewCommandErr(err), typed.Sequence)
		}
		return nil
	}
	if h := p.Handler; h != nil {
		return h.HandleTypedMsg(ctx, msg, typed)
	}
	return nil
}

// Close closes the transport when it supports closing.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
