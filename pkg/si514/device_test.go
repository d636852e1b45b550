package si514

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	t     *testing.T
	addr  uint8
	regs  map[uint8]byte
	log   []regWrite
	stuck map[uint8]byte
}

func newFakeBus(t *testing.T) *fakeBus {
	return &fakeBus{t: t, addr: DefaultAddr, regs: make(map[uint8]byte)}
}

func (b *fakeBus) WriteReg(ctx context.Context, addr, reg uint8, data []byte) error {
	require.Equal(b.t, b.addr, addr)
	require.Len(b.t, data, 1)
	b.regs[reg] = data[0]
	b.log = append(b.log, regWrite{reg, data[0]})
	return nil
}

func (b *fakeBus) ReadReg(ctx context.Context, addr, reg uint8, n int) ([]byte, error) {
	require.Equal(b.t, b.addr, addr)
	require.Equal(b.t, 1, n)
	if v, ok := b.stuck[reg]; ok {
		return []byte{v}, nil
	}
	return []byte{b.regs[reg]}, nil
}

func TestDeviceSetFrequency(t *testing.T) {
	bus := newFakeBus(t)
	dev := New(bus)
	ctx := context.Background()
	require.NoError(t, dev.SetFrequency(ctx, 10000000))

	require.True(t, len(bus.log) >= 11)
	require.Equal(t, regWrite{RegControl, 0x00}, bus.log[0])
	regs := []uint8{RegLP, RegMFrac1, RegMFrac2, RegMFrac3,
		RegMIntFrac, RegMInt, RegHSDiv, RegLSHSDiv}
	for i, reg := range regs {
		require.Equal(t, reg, bus.log[1+i].reg)
	}
	require.Equal(t, regWrite{RegControl, CtlCalibrate}, bus.log[9])
	require.Equal(t, regWrite{RegControl, CtlOutputEnable}, bus.log[10])

	status, err := dev.ReadConfig(ctx)
	require.NoError(t, err)
	require.True(t, status.OutputEnabled)
	require.InDelta(t, 10000000.0, status.Frequency, 0.5)
}

func TestDeviceAdjustFrequency(t *testing.T) {
	bus := newFakeBus(t)
	dev := New(bus)
	ctx := context.Background()
	require.NoError(t, dev.SetFrequency(ctx, 10000000))

	mark := len(bus.log)
	require.NoError(t, dev.AdjustFrequency(ctx, 10005000))
	regs := []uint8{RegMFrac1, RegMFrac2, RegMFrac3, RegMIntFrac, RegMInt}
	require.Len(t, bus.log[mark:], len(regs))
	for i, reg := range regs {
		require.Equal(t, reg, bus.log[mark+i].reg)
	}

	status, err := dev.ReadConfig(ctx)
	require.NoError(t, err)
	require.InDelta(t, 10005000.0, status.Frequency, 0.5)
}

func TestDeviceAdjustNotProgrammed(t *testing.T) {
	dev := New(newFakeBus(t))
	err := dev.AdjustFrequency(context.Background(), 10000000)
	require.Equal(t, ErrNotProgrammed, err)
}

func TestDeviceAdjustTooLarge(t *testing.T) {
	bus := newFakeBus(t)
	dev := New(bus)
	ctx := context.Background()
	require.NoError(t, dev.SetFrequency(ctx, 10000000))
	require.Equal(t, ErrAdjustTooLarge, dev.AdjustFrequency(ctx, 10020000))
	require.Equal(t, ErrAdjustTooLarge, dev.AdjustFrequency(ctx, 9980000))
}

func TestDeviceAdjustMismatch(t *testing.T) {
	bus := newFakeBus(t)
	dev := New(bus)
	ctx := context.Background()
	require.NoError(t, dev.SetFrequency(ctx, 10000000))
	bus.regs[RegMInt] ^= 0x01
	err := dev.AdjustFrequency(ctx, 10001000)
	require.Error(t, err)
	require.IsType(t, &MismatchError{}, err)
}

func TestDeviceVerify(t *testing.T) {
	bus := newFakeBus(t)
	bus.stuck = map[uint8]byte{RegHSDiv: 0xff}
	dev := New(bus, WithVerify(true))
	err := dev.SetFrequency(context.Background(), 10000000)
	require.Error(t, err)
	require.IsType(t, &VerifyError{}, err)
}

func TestDeviceReset(t *testing.T) {
	bus := newFakeBus(t)
	dev := New(bus)
	ctx := context.Background()
	require.NoError(t, dev.SetFrequency(ctx, 10000000))
	require.NoError(t, dev.Reset(ctx))
	require.Equal(t, regWrite{RegReset, RstReset}, bus.log[len(bus.log)-1])
	require.Equal(t, ErrNotProgrammed, dev.AdjustFrequency(ctx, 10000000))
}

func TestDeviceOptions(t *testing.T) {
	bus := newFakeBus(t)
	bus.addr = 0x57
	dev := New(bus, WithAddress(0x57), WithXtalCorrection(10))
	require.Equal(t, uint8(0x57), dev.Addr())
	require.InDelta(t, float64(FXO)*(1.0+1e-6), dev.XtalFreq(), 1e-3)
	require.NoError(t, dev.SetFrequency(context.Background(), 10000000))
}
