package si514

// Register addresses.
const (
	RegLP       uint8 = 0
	RegMFrac1   uint8 = 5
	RegMFrac2   uint8 = 6
	RegMFrac3   uint8 = 7
	RegMIntFrac uint8 = 8
	RegMInt     uint8 = 9
	RegHSDiv    uint8 = 10
	RegLSHSDiv  uint8 = 11
	RegOEState  uint8 = 14
	RegReset    uint8 = 128
	RegControl  uint8 = 132
)

// Register bits.
const (
	CtlCalibrate    byte = 0x01 // RegControl: start VCXO calibration
	CtlOutputEnable byte = 0x04 // RegControl: enable the clock output
	RstReset        byte = 0x80 // RegReset: restore default register values
)

// DefaultAddr is the factory default I2C address of the chip.
const DefaultAddr uint8 = 0x55

// Registers is the encoded form of Params as stored in the
// configuration registers 0 and 5..11.
type Registers struct {
	LP       byte // reg 0
	MFrac1   byte // reg 5
	MFrac2   byte // reg 6
	MFrac3   byte // reg 7
	MIntFrac byte // reg 8
	MInt     byte // reg 9
	HSDiv    byte // reg 10
	LSHSDiv  byte // reg 11
}

// Registers encodes the parameters into register values.
func (p Params) Registers() Registers {
	return Registers{
		LP:       (p.LP1&0xf)<<4 | (p.LP2 & 0xf),
		MFrac1:   byte(p.MFrac),
		MFrac2:   byte(p.MFrac >> 8),
		MFrac3:   byte(p.MFrac >> 16),
		MIntFrac: byte(p.MInt&0x07)<<5 | byte(p.MFrac>>24)&0x1f,
		MInt:     byte(p.MInt>>3) & 0x3f,
		HSDiv:    byte(p.HSDiv),
		LSHSDiv:  (byte(p.LSDiv)&0x7)<<4 | byte(p.HSDiv>>8)&0x3,
	}
}

// Params decodes register values back into parameters.
func (r Registers) Params() Params {
	return Params{
		LSDiv: (r.LSHSDiv >> 4) & 0x7,
		HSDiv: uint16(r.LSHSDiv&0x3)<<8 | uint16(r.HSDiv),
		MInt:  uint16(r.MInt&0x3f)<<3 | uint16(r.MIntFrac>>5)&0x7,
		MFrac: uint32(r.MIntFrac&0x1f)<<24 | uint32(r.MFrac3)<<16 |
			uint32(r.MFrac2)<<8 | uint32(r.MFrac1),
		LP1: (r.LP >> 4) & 0xf,
		LP2: r.LP & 0xf,
	}
}

// writes returns the register writes programming a full configuration,
// in the order the datasheet requires.
func (r Registers) writes() []regWrite {
	return []regWrite{
		{RegLP, r.LP},
		{RegMFrac1, r.MFrac1},
		{RegMFrac2, r.MFrac2},
		{RegMFrac3, r.MFrac3},
		{RegMIntFrac, r.MIntFrac},
		{RegMInt, r.MInt},
		{RegHSDiv, r.HSDiv},
		{RegLSHSDiv, r.LSHSDiv},
	}
}

// mWrites returns the register writes updating only the feedback
// divider M, used for small frequency changes.
func (r Registers) mWrites() []regWrite {
	return []regWrite{
		{RegMFrac1, r.MFrac1},
		{RegMFrac2, r.MFrac2},
		{RegMFrac3, r.MFrac3},
		{RegMIntFrac, r.MIntFrac},
		{RegMInt, r.MInt},
	}
}

type regWrite struct {
	reg   uint8
	value byte
}
