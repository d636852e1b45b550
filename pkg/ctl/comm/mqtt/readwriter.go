package mqtt

import (
	"context"
	"io"

	"github.com/radioclk/si514.go/pkg/ctl"
)

// ReadWriter bridges a pair of MQTT topics to the packet pipe. Under
// the clock topic prefix, agents consume cmd and produce msg;
// connectors do the reverse.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
}

func newReadWriter(q *Queue, sub, pub string) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		SubTopic: sub,
		PubTopic: pub,
		packetCh: make(chan []byte, 1),
	}
}

// ForConnector creates the ReadWriter for the connector side of ref.
func ForConnector(q *Queue, ref ctl.ClockRef) *ReadWriter {
	name := ref.Name()
	return newReadWriter(q, name+"/msg", name+"/cmd")
}

// ForAgent creates the ReadWriter for the agent side of ref.
func ForAgent(q *Queue, ref ctl.ClockRef) *ReadWriter {
	name := ref.Name()
	return newReadWriter(q, name+"/cmd", name+"/msg")
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	pkt, ok := <-p.packetCh
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable, pumping the subscription until the context
// is canceled.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	<-ctx.Done()
	// unsubscribe before closing so a racing dispatch can't hit a
	// closed channel
	sub.Close()
	close(p.packetCh)
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	p.packetCh <- payload
}
