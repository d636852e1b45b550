package bridge_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/radioclk/si514.go/pkg/bridge"
	"github.com/radioclk/si514.go/pkg/bridge/comm"
	"github.com/radioclk/si514.go/pkg/bridge/sim"
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

func newDuplex() (host, dev io.ReadWriter) {
	a := make(chan byte, 4096)
	b := make(chan byte, 4096)
	return &chanConn{r: a, w: b}, &chanConn{r: b, w: a}
}

type rig struct {
	master *bridge.Master
	chip   *sim.Si514
	br     *sim.Bridge
	cancel context.CancelFunc
}

func newRig(t *testing.T) *rig {
	host, dev := newDuplex()
	br := sim.NewBridge(dev)
	chip := sim.NewSi514()
	br.Add(chip)
	client := comm.NewClient(comm.NewLink(host))
	master := bridge.NewMaster(client)

	ctx, cancel := context.WithCancel(context.Background())
	go br.Run(ctx)
	go master.Run(ctx)
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
	return &rig{master: master, chip: chip, br: br, cancel: cancel}
}

func TestMasterPingInfo(t *testing.T) {
	r := newRig(t)
	defer r.cancel()
	ctx := context.Background()
	require.NoError(t, r.master.Ping(ctx))
	info, err := r.master.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, bridge.Info{
		Major:      sim.VersionMajor,
		Minor:      sim.VersionMinor,
		MaxPayload: bridge.MaxTransfer,
	}, info)
}

func TestMasterReadWrite(t *testing.T) {
	r := newRig(t)
	defer r.cancel()
	ctx := context.Background()
	addr := r.chip.Addr()

	require.NoError(t, r.master.WriteReg(ctx, addr, si514.RegHSDiv, []byte{0xd0}))
	data, err := r.master.ReadReg(ctx, addr, si514.RegHSDiv, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xd0}, data)

	require.NoError(t, r.master.WriteReg(ctx, addr, si514.RegMFrac1, []byte{1, 2, 3}))
	data, err = r.master.ReadReg(ctx, addr, si514.RegMFrac1, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)
}

func TestMasterProbeScan(t *testing.T) {
	r := newRig(t)
	defer r.cancel()
	ctx := context.Background()

	ok, err := r.master.Probe(ctx, r.chip.Addr())
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.master.Probe(ctx, 0x20)
	require.NoError(t, err)
	require.False(t, ok)

	r.br.Add(sim.NewSi514().SetAddr(0x57))
	found, err := r.master.Scan(ctx, 0x50, 0x60)
	require.NoError(t, err)
	require.Equal(t, []uint8{0x55, 0x57}, found)
}

func TestMasterErrors(t *testing.T) {
	r := newRig(t)
	defer r.cancel()
	ctx := context.Background()

	err := r.master.WriteReg(ctx, 0x20, 0, []byte{1})
	require.Equal(t, bridge.ErrAddrNAK, err)
	_, err = r.master.ReadReg(ctx, 0x20, 0, 1)
	require.Equal(t, bridge.ErrAddrNAK, err)

	r.br.Add(&sim.Faulty{
		Peripheral: sim.NewSi514().SetAddr(0x57),
		WriteErr:   bridge.ErrDataNAK,
		ReadErr:    bridge.ErrBusBusy,
	})
	err = r.master.WriteReg(ctx, 0x57, 0, []byte{1})
	require.Equal(t, bridge.ErrDataNAK, err)
	_, err = r.master.ReadReg(ctx, 0x57, 0, 1)
	require.Equal(t, bridge.ErrBusBusy, err)
}

func TestMasterValidation(t *testing.T) {
	m := bridge.NewMaster(comm.NewClient(comm.NewLink(nil)))
	ctx := context.Background()

	require.Error(t, m.WriteReg(ctx, 0x80, 0, []byte{1}))
	require.Equal(t, bridge.ErrOverflow,
		m.WriteReg(ctx, 0x55, 0, make([]byte, bridge.MaxTransfer+1)))
	_, err := m.ReadReg(ctx, 0x55, 0, 0)
	require.Equal(t, bridge.ErrOverflow, err)
	_, err = m.ReadReg(ctx, 0x55, 0, bridge.MaxTransfer+1)
	require.Equal(t, bridge.ErrOverflow, err)
	_, err = m.Scan(ctx, 0x60, 0x50)
	require.Error(t, err)
}

func TestMasterDevice(t *testing.T) {
	r := newRig(t)
	defer r.cancel()
	ctx := context.Background()

	require.InDelta(t, float64(sim.DefaultFreq), r.chip.Frequency(), 0.5)

	dev := si514.New(r.master, si514.WithVerify(true))
	require.NoError(t, dev.SetFrequency(ctx, 25000000))
	require.InDelta(t, 25000000.0, r.chip.Frequency(), 0.5)
	require.True(t, r.chip.OutputEnabled())

	require.NoError(t, dev.AdjustFrequency(ctx, 25001000))
	require.InDelta(t, 25001000.0, r.chip.Frequency(), 0.5)

	require.NoError(t, dev.Reset(ctx))
	require.InDelta(t, float64(sim.DefaultFreq), r.chip.Frequency(), 0.5)
}
