package comm

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
)

type chanPacketRW struct {
	in  chan []byte
	out chan []byte
}

func (p *chanPacketRW) ReadPacket() ([]byte, error) {
	pkt, ok := <-p.in
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

func (p *chanPacketRW) WritePacket(pkt []byte) error {
	p.out <- pkt
	return nil
}

func newPacketPipe() (a, b PacketReadWriter) {
	x := make(chan []byte, 16)
	y := make(chan []byte, 16)
	return &chanPacketRW{in: x, out: y}, &chanPacketRW{in: y, out: x}
}

type connEnv struct {
	conn   *ClockConn
	reg    *Registrar
	cancel context.CancelFunc
}

func newConnEnv(t *testing.T, handler ctl.CommandHandler) *connEnv {
	toolRW, agentRW := newPacketPipe()
	conn := &ClockConn{}
	conn.Init(toolRW)
	reg := &Registrar{}
	reg.Init(agentRW, handler)
	ctx, cancel := context.WithCancel(context.Background())
	go conn.Run(ctx)
	go reg.Run(ctx)
	return &connEnv{conn: conn, reg: reg, cancel: cancel}
}

func result(t *testing.T, f ctl.CommandFuture) ctl.Result {
	select {
	case res := <-f.ResultChan():
		return res
	case <-time.After(3 * time.Second):
		t.Fatal("no result")
	}
	return ctl.Result{}
}

func TestConnDoCommand(t *testing.T) {
	env := newConnEnv(t, ctl.HandleCommandFunc(func(ctx context.Context, cmd ctl.Command) error {
		switch msg := cmd.Msg().(type) {
		case *msgs.SetFrequency:
			require.Equal(t, uint32(10000000), msg.Freq)
			return cmd.Done(msgs.NewCommandOK())
		case *msgs.StatusQuery:
			return cmd.Done(&msgs.ClockStatus{Freq: 1e7, OutputEnabled: true})
		}
		return msgs.ErrUnsupportedCommand
	}))
	defer env.cancel()

	res := result(t, env.conn.DoCommand(&msgs.SetFrequency{Freq: 10000000}))
	require.NoError(t, res.Err)
	require.IsType(t, &msgs.CommandOK{}, res.Msg)

	res = result(t, env.conn.DoCommand(&msgs.StatusQuery{}))
	require.NoError(t, res.Err)
	status := res.Msg.(*msgs.ClockStatus)
	require.True(t, status.OutputEnabled)
	require.Equal(t, 1e7, status.Freq)

	res = result(t, env.conn.DoCommand(&msgs.Reset{}))
	require.Error(t, res.Err)
	require.IsType(t, &msgs.CommandErr{}, res.Err)
}

func TestConnCommandExpiration(t *testing.T) {
	toolRW, agentRW := newPacketPipe()
	conn := &ClockConn{}
	conn.Init(toolRW)
	conn.Expiration = 10 * time.Millisecond
	reg := &Registrar{}
	reg.Init(agentRW, ctl.HandleCommandFunc(func(ctx context.Context, cmd ctl.Command) error {
		// never reply
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go conn.Run(ctx)
	go reg.Run(ctx)

	f := conn.DoCommand(&msgs.Reset{})
	res := result(t, f)
	require.Equal(t, context.DeadlineExceeded, res.Err)
}

func TestRegistrarSendEvent(t *testing.T) {
	env := newConnEnv(t, nil)
	defer env.cancel()

	require.NoError(t, env.reg.SendEvent(context.Background(), &msgs.FrequencyChanged{Freq: 12288000}))
	select {
	case msg := <-env.conn.EventChan():
		require.Equal(t, &msgs.FrequencyChanged{Freq: 12288000}, msg)
	case <-time.After(3 * time.Second):
		t.Fatal("no event")
	}
}

func TestLocalConn(t *testing.T) {
	conn := NewLocalConn(context.Background(),
		ctl.HandleCommandFunc(func(ctx context.Context, cmd ctl.Command) error {
			if _, ok := cmd.Msg().(*msgs.StatusQuery); ok {
				return cmd.Done(&msgs.ClockStatus{Freq: 1e6})
			}
			return msgs.ErrUnsupportedCommand
		}))

	res := result(t, conn.DoCommand(&msgs.StatusQuery{}))
	require.NoError(t, res.Err)
	require.Equal(t, 1e6, res.Msg.(*msgs.ClockStatus).Freq)

	res = result(t, conn.DoCommand(&msgs.Reset{}))
	require.Error(t, res.Err)
}
