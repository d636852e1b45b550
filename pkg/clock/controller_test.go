package clock_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/radioclk/si514.go/pkg/bridge"
	"github.com/radioclk/si514.go/pkg/bridge/comm"
	"github.com/radioclk/si514.go/pkg/bridge/sim"
	"github.com/radioclk/si514.go/pkg/clock"
	"github.com/radioclk/si514.go/pkg/ctl"
	ctlcomm "github.com/radioclk/si514.go/pkg/ctl/comm"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
	"github.com/radioclk/si514.go/pkg/si514"
)

type chanConn struct {
	r <-chan byte
	w chan<- byte
}

func (c *chanConn) Read(p []byte) (int, error) {
	b, ok := <-c.r
	if !ok {
		return 0, io.EOF
	}
	p[0] = b
	return 1, nil
}

func (c *chanConn) Write(p []byte) (int, error) {
	for _, b := range p {
		c.w <- b
	}
	return len(p), nil
}

type eventRecorder struct {
	events chan ctl.Message
}

func (r *eventRecorder) SendEvent(ctx context.Context, msg ctl.Message) error {
	r.events <- msg
	return nil
}

type env struct {
	ctl    *clock.Controller
	conn   ctl.Conn
	chip   *sim.Si514
	events *eventRecorder
	cancel context.CancelFunc
}

func newEnv(t *testing.T) *env {
	a := make(chan byte, 4096)
	b := make(chan byte, 4096)
	host := &chanConn{r: a, w: b}
	dev := &chanConn{r: b, w: a}

	br := sim.NewBridge(dev)
	chip := sim.NewSi514()
	br.Add(chip)
	client := comm.NewClient(comm.NewLink(host))
	controller := clock.NewController(bridge.NewMaster(client))
	events := &eventRecorder{events: make(chan ctl.Message, 4)}
	controller.Events = events

	ctx, cancel := context.WithCancel(context.Background())
	go br.Run(ctx)
	go client.Run(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-client.StateChan():
			case <-client.EventChan():
			}
		}
	}()
	deadline := time.Now().Add(3 * time.Second)
	for !client.Link().State().IsReady() {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("link not synchronized")
		}
		time.Sleep(time.Millisecond)
	}
	return &env{
		ctl:    controller,
		conn:   ctlcomm.NewLocalConn(ctx, controller),
		chip:   chip,
		events: events,
		cancel: cancel,
	}
}

func (e *env) do(t *testing.T, msg ctl.Message) ctl.Result {
	select {
	case result := <-e.conn.DoCommand(msg).ResultChan():
		return result
	case <-time.After(3 * time.Second):
		t.Fatal("command timed out")
	}
	return ctl.Result{}
}

func (e *env) event(t *testing.T) ctl.Message {
	select {
	case msg := <-e.events.events:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("no event")
	}
	return nil
}

func TestControllerFrequency(t *testing.T) {
	e := newEnv(t)
	defer e.cancel()

	result := e.do(t, &msgs.SetFrequency{Freq: 25000000})
	require.NoError(t, result.Err)
	require.IsType(t, &msgs.CommandOK{}, result.Msg)
	require.InDelta(t, 25000000.0, e.chip.Frequency(), 0.5)
	require.Equal(t, &msgs.FrequencyChanged{Freq: 25000000}, e.event(t))

	result = e.do(t, &msgs.AdjustFrequency{Freq: 25001000})
	require.NoError(t, result.Err)
	require.InDelta(t, 25001000.0, e.chip.Frequency(), 0.5)
	require.Equal(t, &msgs.FrequencyChanged{Freq: 25001000}, e.event(t))

	result = e.do(t, &msgs.AdjustFrequency{Freq: 26000000})
	require.Error(t, result.Err)
}

func TestControllerStatus(t *testing.T) {
	e := newEnv(t)
	defer e.cancel()

	result := e.do(t, &msgs.StatusQuery{})
	require.NoError(t, result.Err)
	status, ok := result.Msg.(*msgs.ClockStatus)
	require.True(t, ok)
	require.InDelta(t, float64(sim.DefaultFreq), status.Freq, 0.5)
	require.True(t, status.OutputEnabled)
}

func TestControllerOutput(t *testing.T) {
	e := newEnv(t)
	defer e.cancel()

	result := e.do(t, &msgs.SetOutput{Enable: false})
	require.NoError(t, result.Err)
	require.False(t, e.chip.OutputEnabled())
	result = e.do(t, &msgs.SetOutput{Enable: true})
	require.NoError(t, result.Err)
	require.True(t, e.chip.OutputEnabled())
}

func TestControllerReset(t *testing.T) {
	e := newEnv(t)
	defer e.cancel()

	result := e.do(t, &msgs.SetFrequency{Freq: 25000000})
	require.NoError(t, result.Err)
	result = e.do(t, &msgs.Reset{})
	require.NoError(t, result.Err)
	require.InDelta(t, float64(sim.DefaultFreq), e.chip.Frequency(), 0.5)
}

func TestControllerRegisters(t *testing.T) {
	e := newEnv(t)
	defer e.cancel()

	result := e.do(t, &msgs.RegWrite{Reg: si514.RegHSDiv, Value: 0xd0})
	require.NoError(t, result.Err)
	result = e.do(t, &msgs.RegRead{Reg: si514.RegHSDiv})
	require.NoError(t, result.Err)
	require.Equal(t, &msgs.RegValue{Reg: si514.RegHSDiv, Value: 0xd0}, result.Msg)
}

func TestControllerBus(t *testing.T) {
	e := newEnv(t)
	defer e.cancel()

	result := e.do(t, &msgs.BusScan{})
	require.NoError(t, result.Err)
	require.Equal(t, &msgs.BusScanResult{Addrs: []uint8{si514.DefaultAddr}}, result.Msg)

	result = e.do(t, &msgs.BusScan{Lo: 0x20, Hi: 0x30})
	require.NoError(t, result.Err)
	require.Equal(t, &msgs.BusScanResult{Addrs: []uint8{}}, result.Msg)

	result = e.do(t, &msgs.BridgeInfoQuery{})
	require.NoError(t, result.Err)
	require.Equal(t, &msgs.BridgeInfo{
		Major:      sim.VersionMajor,
		Minor:      sim.VersionMinor,
		MaxPayload: bridge.MaxTransfer,
	}, result.Msg)
}

func TestControllerUnsupported(t *testing.T) {
	e := newEnv(t)
	defer e.cancel()

	result := e.do(t, msgs.NewCommandOK())
	require.Error(t, result.Err)
}
