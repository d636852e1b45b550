package bridge

// Command codes carried in the frame code nibble. Bit 0 is reserved
// for the error flag in replies, so commands use even values.
const (
	CmdPing  byte = 0x0
	CmdWrite byte = 0x2
	CmdRead  byte = 0x4
	CmdProbe byte = 0x6
	CmdInfo  byte = 0x8
)

// Status codes reported by the bridge in error replies.
const (
	StatusAddrNAK    byte = 1
	StatusDataNAK    byte = 2
	StatusBusBusy    byte = 3
	StatusBadRequest byte = 4
	StatusOverflow   byte = 5
)

// MaxTransfer is the maximum data length of a single I2C transfer
// through the bridge, limited by the firmware's transaction buffer.
const MaxTransfer = 32

// Info describes the bridge firmware.
type Info struct {
	Major      uint8
	Minor      uint8
	MaxPayload uint8
}
