package sim

import (
	"sync"

	"github.com/radioclk/si514.go/pkg/bridge"
	"github.com/radioclk/si514.go/pkg/si514"
)

// DefaultFreq is the power-up output frequency of the emulated chip in Hz.
const DefaultFreq uint32 = 10000000

// Si514 emulates the register behavior of an Si514 clock generator.
type Si514 struct {
	addr uint8
	regs map[uint8]byte
	lock sync.Mutex
}

// NewSi514 creates an emulated chip at the factory default address.
func NewSi514() *Si514 {
	s := &Si514{addr: si514.DefaultAddr}
	s.reset()
	return s
}

// SetAddr moves the chip to a different address.
func (s *Si514) SetAddr(addr uint8) *Si514 {
	s.addr = addr
	return s
}

// Addr implements Peripheral.
func (s *Si514) Addr() uint8 {
	return s.addr
}

// WriteReg implements Peripheral, auto-incrementing the register
// address as the real chip does.
func (s *Si514) WriteReg(reg uint8, data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, v := range data {
		if err := s.write(reg, v); err != nil {
			return err
		}
		reg++
	}
	return nil
}

// ReadReg implements Peripheral. Unimplemented registers read as zero.
func (s *Si514) ReadReg(reg uint8, n int) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	data := make([]byte, n)
	for i := range data {
		data[i] = s.regs[reg+uint8(i)]
	}
	return data, nil
}

// Params decodes the configuration registers.
func (s *Si514) Params() si514.Params {
	s.lock.Lock()
	defer s.lock.Unlock()
	return si514.Registers{
		LP:       s.regs[si514.RegLP],
		MFrac1:   s.regs[si514.RegMFrac1],
		MFrac2:   s.regs[si514.RegMFrac2],
		MFrac3:   s.regs[si514.RegMFrac3],
		MIntFrac: s.regs[si514.RegMIntFrac],
		MInt:     s.regs[si514.RegMInt],
		HSDiv:    s.regs[si514.RegHSDiv],
		LSHSDiv:  s.regs[si514.RegLSHSDiv],
	}.Params()
}

// Frequency decodes the configured output frequency in Hz.
func (s *Si514) Frequency() float64 {
	return s.Params().Frequency(float64(si514.FXO))
}

// OutputEnabled reports the state of the output enable bit.
func (s *Si514) OutputEnabled() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.regs[si514.RegControl]&si514.CtlOutputEnable != 0
}

func (s *Si514) write(reg uint8, v byte) error {
	switch reg {
	case si514.RegReset:
		if v&si514.RstReset != 0 {
			s.reset()
		}
		return nil
	case si514.RegControl:
		// calibration completes instantly, the bit self clears
		s.regs[reg] = v &^ si514.CtlCalibrate
		return nil
	}
	if _, ok := s.regs[reg]; !ok {
		return bridge.ErrDataNAK
	}
	s.regs[reg] = v
	return nil
}

func (s *Si514) reset() {
	p, err := si514.Solve(DefaultFreq, float64(si514.FXO))
	if err != nil {
		panic(err)
	}
	r := p.Registers()
	s.regs = map[uint8]byte{
		si514.RegLP:       r.LP,
		si514.RegMFrac1:   r.MFrac1,
		si514.RegMFrac2:   r.MFrac2,
		si514.RegMFrac3:   r.MFrac3,
		si514.RegMIntFrac: r.MIntFrac,
		si514.RegMInt:     r.MInt,
		si514.RegHSDiv:    r.HSDiv,
		si514.RegLSHSDiv:  r.LSHSDiv,
		si514.RegOEState:  0x00,
		si514.RegControl:  si514.CtlOutputEnable,
	}
}
