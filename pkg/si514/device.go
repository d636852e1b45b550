package si514

import (
	"context"
	"errors"
	"fmt"
)

// Bus abstracts the I2C register transactions the driver needs.
type Bus interface {
	WriteReg(ctx context.Context, addr, reg uint8, data []byte) error
	ReadReg(ctx context.Context, addr, reg uint8, n int) ([]byte, error)
}

var (
	// ErrNotProgrammed indicates no frequency has been programmed yet,
	// so a small frequency change has no baseline.
	ErrNotProgrammed = errors.New("no frequency programmed")
	// ErrAdjustTooLarge indicates the requested small change exceeds
	// the window the chip supports without recalibration.
	ErrAdjustTooLarge = errors.New("adjustment exceeds small change window")
)

// adjustWindow is the relative frequency change the chip accepts
// without a VCXO recalibration (1000 ppm per the datasheet).
const adjustWindow = 0.001

// Status is a decoded snapshot of the chip configuration.
type Status struct {
	Params        Params
	Frequency     float64
	OutputEnabled bool
}

// Device drives one Si514 on an I2C bus.
type Device struct {
	bus      Bus
	addr     uint8
	xtalCorr float64
	verify   bool

	lastM    Params
	lastFreq uint32
}

// Option configures a Device.
type Option func(*Device)

// WithAddress sets the chip I2C address.
func WithAddress(addr uint8) Option {
	return func(d *Device) {
		d.addr = addr
	}
}

// WithXtalCorrection sets the crystal correction factor: the crystal
// error in Hz when the crystal frequency is normalized to 10 MHz.
func WithXtalCorrection(corr float64) Option {
	return func(d *Device) {
		d.xtalCorr = corr
	}
}

// WithVerify enables readback verification of every register write.
func WithVerify(on bool) Option {
	return func(d *Device) {
		d.verify = on
	}
}

// New creates a Device over a bus.
func New(bus Bus, opts ...Option) *Device {
	d := &Device{bus: bus, addr: DefaultAddr}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Addr gets the chip I2C address.
func (d *Device) Addr() uint8 {
	return d.addr
}

// XtalFreq returns the corrected crystal frequency in Hz.
func (d *Device) XtalFreq() float64 {
	return float64(FXO) * (1.0 + d.xtalCorr/10000000.0)
}

// SetFrequency programs a large frequency change: the output is
// disabled, the full divider configuration is written, the VCXO is
// recalibrated and the output re-enabled.
func (d *Device) SetFrequency(ctx context.Context, freq uint32) error {
	params, err := Solve(freq, d.XtalFreq())
	if err != nil {
		return err
	}
	if err := d.OutputDisable(ctx); err != nil {
		return err
	}
	for _, w := range params.Registers().writes() {
		if err := d.writeReg(ctx, w.reg, w.value); err != nil {
			return err
		}
	}
	if err := d.Calibrate(ctx); err != nil {
		return err
	}
	if err := d.OutputEnable(ctx); err != nil {
		return err
	}
	d.lastM = params
	d.lastFreq = freq
	return nil
}

// AdjustFrequency programs a small frequency change by scaling the
// feedback divider M only, without recalibration. The currently
// programmed M is read back first and must match the value this driver
// wrote last.
func (d *Device) AdjustFrequency(ctx context.Context, freq uint32) error {
	if d.lastFreq == 0 {
		return ErrNotProgrammed
	}
	ratio := float64(freq)/float64(d.lastFreq) - 1.0
	if ratio > adjustWindow || ratio < -adjustWindow {
		return ErrAdjustTooLarge
	}
	cur, err := d.readM(ctx)
	if err != nil {
		return err
	}
	if cur.MInt != d.lastM.MInt || cur.MFrac != d.lastM.MFrac {
		return &MismatchError{
			WantInt:  d.lastM.MInt,
			WantFrac: d.lastM.MFrac,
			GotInt:   cur.MInt,
			GotFrac:  cur.MFrac,
		}
	}
	m := d.lastM.M() * float64(freq) / float64(d.lastFreq)
	next := d.lastM
	next.MInt = uint16(m)
	next.MFrac = uint32((m - float64(next.MInt)) * float64(1<<29))
	for _, w := range next.Registers().mWrites() {
		if err := d.writeReg(ctx, w.reg, w.value); err != nil {
			return err
		}
	}
	d.lastM = next
	d.lastFreq = freq
	return nil
}

// OutputEnable enables the clock output.
func (d *Device) OutputEnable(ctx context.Context) error {
	return d.writeReg(ctx, RegControl, CtlOutputEnable)
}

// OutputDisable disables the clock output.
func (d *Device) OutputDisable(ctx context.Context) error {
	return d.writeReg(ctx, RegControl, 0x00)
}

// Calibrate starts a VCXO calibration. Required after a large
// frequency change.
func (d *Device) Calibrate(ctx context.Context) error {
	value, err := d.readReg(ctx, RegControl)
	if err != nil {
		return err
	}
	// the calibrate bit is self clearing, no readback
	return d.busWrite(ctx, RegControl, value|CtlCalibrate)
}

// Reset restores all registers to their default values.
func (d *Device) Reset(ctx context.Context) error {
	err := d.busWrite(ctx, RegReset, RstReset)
	if err == nil {
		d.lastFreq, d.lastM = 0, Params{}
	}
	return err
}

// ReadConfig reads and decodes the current chip configuration.
func (d *Device) ReadConfig(ctx context.Context) (Status, error) {
	var regs Registers
	for _, r := range []struct {
		reg uint8
		p   *byte
	}{
		{RegLP, &regs.LP},
		{RegMFrac1, &regs.MFrac1},
		{RegMFrac2, &regs.MFrac2},
		{RegMFrac3, &regs.MFrac3},
		{RegMIntFrac, &regs.MIntFrac},
		{RegMInt, &regs.MInt},
		{RegHSDiv, &regs.HSDiv},
		{RegLSHSDiv, &regs.LSHSDiv},
	} {
		v, err := d.readReg(ctx, r.reg)
		if err != nil {
			return Status{}, err
		}
		*r.p = v
	}
	control, err := d.readReg(ctx, RegControl)
	if err != nil {
		return Status{}, err
	}
	params := regs.Params()
	return Status{
		Params:        params,
		Frequency:     params.Frequency(d.XtalFreq()),
		OutputEnabled: control&CtlOutputEnable != 0,
	}, nil
}

// ReadRegister reads a single raw register.
func (d *Device) ReadRegister(ctx context.Context, reg uint8) (byte, error) {
	return d.readReg(ctx, reg)
}

// WriteRegister writes a single raw register without verification.
func (d *Device) WriteRegister(ctx context.Context, reg uint8, value byte) error {
	return d.busWrite(ctx, reg, value)
}

func (d *Device) readM(ctx context.Context) (Params, error) {
	var regs Registers
	for _, r := range []struct {
		reg uint8
		p   *byte
	}{
		{RegMFrac1, &regs.MFrac1},
		{RegMFrac2, &regs.MFrac2},
		{RegMFrac3, &regs.MFrac3},
		{RegMIntFrac, &regs.MIntFrac},
		{RegMInt, &regs.MInt},
	} {
		v, err := d.readReg(ctx, r.reg)
		if err != nil {
			return Params{}, err
		}
		*r.p = v
	}
	return regs.Params(), nil
}

func (d *Device) writeReg(ctx context.Context, reg uint8, value byte) error {
	if err := d.busWrite(ctx, reg, value); err != nil {
		return err
	}
	if !d.verify {
		return nil
	}
	got, err := d.readReg(ctx, reg)
	if err != nil {
		return err
	}
	if got != value {
		return &VerifyError{Reg: reg, Want: value, Got: got}
	}
	return nil
}

func (d *Device) busWrite(ctx context.Context, reg uint8, value byte) error {
	return d.bus.WriteReg(ctx, d.addr, reg, []byte{value})
}

func (d *Device) readReg(ctx context.Context, reg uint8) (byte, error) {
	b, err := d.bus.ReadReg(ctx, d.addr, reg, 1)
	if err != nil {
		return 0, err
	}
	if len(b) != 1 {
		return 0, fmt.Errorf("register %d: unexpected read length %d", reg, len(b))
	}
	return b[0], nil
}
