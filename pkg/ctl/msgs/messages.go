package msgs

import (
	"github.com/radioclk/si514.go/pkg/ctl"
)

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupClock   uint32 = 0x00020000
	GroupBus     uint32 = 0x00030000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID       uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID      uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	SetFrequencyTypeID    uint32 = GroupClock | 0x0000
	AdjustFrequencyTypeID uint32 = GroupClock | 0x0001
	SetOutputTypeID       uint32 = GroupClock | 0x0002
	ResetTypeID           uint32 = GroupClock | 0x0003
	CalibrateTypeID       uint32 = GroupClock | 0x0004
	StatusQueryTypeID     uint32 = GroupClock | 0x0005
	ClockStatusTypeID     uint32 = StatusQueryTypeID | TypeIDMaskReply
	RegReadTypeID         uint32 = GroupBus | 0x0000
	RegValueTypeID        uint32 = RegReadTypeID | TypeIDMaskReply
	RegWriteTypeID        uint32 = GroupBus | 0x0001
	BusScanTypeID         uint32 = GroupBus | 0x0002
	BusScanResultTypeID   uint32 = BusScanTypeID | TypeIDMaskReply
	BridgeInfoQueryTypeID uint32 = GroupBus | 0x0003
	BridgeInfoTypeID      uint32 = BridgeInfoQueryTypeID | TypeIDMaskReply

	FrequencyChangedTypeID uint32 = TypeIDKindEvent | GroupClock | 0x0000
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() ctl.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{Message: err.Error()}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() ctl.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// SetFrequency commands a large frequency change with recalibration.
type SetFrequency struct {
	Freq uint32 `json:"freq"`
}

// NewMessage implements Message.
func (m *SetFrequency) NewMessage() ctl.Message { return &SetFrequency{} }

// TypeID implements SerializableMessage.
func (m *SetFrequency) TypeID() uint32 { return SetFrequencyTypeID }

// AdjustFrequency commands a small glitch-free frequency change.
type AdjustFrequency struct {
	Freq uint32 `json:"freq"`
}

// NewMessage implements Message.
func (m *AdjustFrequency) NewMessage() ctl.Message { return &AdjustFrequency{} }

// TypeID implements SerializableMessage.
func (m *AdjustFrequency) TypeID() uint32 { return AdjustFrequencyTypeID }

// SetOutput commands the clock output on or off.
type SetOutput struct {
	Enable bool `json:"enable"`
}

// NewMessage implements Message.
func (m *SetOutput) NewMessage() ctl.Message { return &SetOutput{} }

// TypeID implements SerializableMessage.
func (m *SetOutput) TypeID() uint32 { return SetOutputTypeID }

// Reset commands a register reset to factory defaults.
type Reset struct {
}

// NewMessage implements Message.
func (m *Reset) NewMessage() ctl.Message { return &Reset{} }

// TypeID implements SerializableMessage.
func (m *Reset) TypeID() uint32 { return ResetTypeID }

// Calibrate commands a VCXO calibration.
type Calibrate struct {
}

// NewMessage implements Message.
func (m *Calibrate) NewMessage() ctl.Message { return &Calibrate{} }

// TypeID implements SerializableMessage.
func (m *Calibrate) TypeID() uint32 { return CalibrateTypeID }

// StatusQuery queries the clock configuration.
type StatusQuery struct {
}

// NewMessage implements Message.
func (m *StatusQuery) NewMessage() ctl.Message { return &StatusQuery{} }

// TypeID implements SerializableMessage.
func (m *StatusQuery) TypeID() uint32 { return StatusQueryTypeID }

// ClockStatus is the reply to StatusQuery.
type ClockStatus struct {
	Freq          float64 `json:"freq"`
	MInt          uint16  `json:"m_int"`
	MFrac         uint32  `json:"m_frac"`
	HSDiv         uint16  `json:"hs_div"`
	LSDiv         uint8   `json:"ls_div"`
	OutputEnabled bool    `json:"output_enabled"`
}

// NewMessage implements Message.
func (m *ClockStatus) NewMessage() ctl.Message { return &ClockStatus{} }

// TypeID implements SerializableMessage.
func (m *ClockStatus) TypeID() uint32 { return ClockStatusTypeID }

// RegRead reads a raw chip register.
type RegRead struct {
	Reg uint8 `json:"reg"`
}

// NewMessage implements Message.
func (m *RegRead) NewMessage() ctl.Message { return &RegRead{} }

// TypeID implements SerializableMessage.
func (m *RegRead) TypeID() uint32 { return RegReadTypeID }

// RegValue is the reply to RegRead.
type RegValue struct {
	Reg   uint8 `json:"reg"`
	Value uint8 `json:"value"`
}

// NewMessage implements Message.
func (m *RegValue) NewMessage() ctl.Message { return &RegValue{} }

// TypeID implements SerializableMessage.
func (m *RegValue) TypeID() uint32 { return RegValueTypeID }

// RegWrite writes a raw chip register.
type RegWrite struct {
	Reg   uint8 `json:"reg"`
	Value uint8 `json:"value"`
}

// NewMessage implements Message.
func (m *RegWrite) NewMessage() ctl.Message { return &RegWrite{} }

// TypeID implements SerializableMessage.
func (m *RegWrite) TypeID() uint32 { return RegWriteTypeID }

// BusScan probes an I2C address range.
type BusScan struct {
	Lo uint8 `json:"lo"`
	Hi uint8 `json:"hi"`
}

// NewMessage implements Message.
func (m *BusScan) NewMessage() ctl.Message { return &BusScan{} }

// TypeID implements SerializableMessage.
func (m *BusScan) TypeID() uint32 { return BusScanTypeID }

// BusScanResult is the reply to BusScan.
type BusScanResult struct {
	Addrs []uint8 `json:"addrs"`
}

// NewMessage implements Message.
func (m *BusScanResult) NewMessage() ctl.Message { return &BusScanResult{} }

// TypeID implements SerializableMessage.
func (m *BusScanResult) TypeID() uint32 { return BusScanResultTypeID }

// BridgeInfoQuery queries the bridge firmware.
type BridgeInfoQuery struct {
}

// NewMessage implements Message.
func (m *BridgeInfoQuery) NewMessage() ctl.Message { return &BridgeInfoQuery{} }

// TypeID implements SerializableMessage.
func (m *BridgeInfoQuery) TypeID() uint32 { return BridgeInfoQueryTypeID }

// BridgeInfo is the reply to BridgeInfoQuery.
type BridgeInfo struct {
	Major      uint8 `json:"major"`
	Minor      uint8 `json:"minor"`
	MaxPayload uint8 `json:"max_payload"`
}

// NewMessage implements Message.
func (m *BridgeInfo) NewMessage() ctl.Message { return &BridgeInfo{} }

// TypeID implements SerializableMessage.
func (m *BridgeInfo) TypeID() uint32 { return BridgeInfoTypeID }

// FrequencyChanged is the event published after the output frequency
// changed.
type FrequencyChanged struct {
	Freq uint32 `json:"freq"`
}

// NewMessage implements Message.
func (m *FrequencyChanged) NewMessage() ctl.Message { return &FrequencyChanged{} }

// TypeID implements SerializableMessage.
func (m *FrequencyChanged) TypeID() uint32 { return FrequencyChangedTypeID }
