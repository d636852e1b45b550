package msgs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/radioclk/si514.go/pkg/ctl"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Message Kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Typed wraps a message with type information.
type Typed struct {
	TypeID   uint32          `json:"type_id"`
	Sequence uint32          `json:"sequence,omitempty"`
	Message  json.RawMessage `json:"message,omitempty"`
}

// TypedMsgHandler handles a decoded message.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, ctl.Message, *Typed) error
}

// HandleTypedMsgFunc is func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, ctl.Message, *Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg ctl.Message, typed *Typed) error {
	return f(ctx, msg, typed)
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

var (
	// ErrNotSerializable indicates the message is not serializable.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand indicates the command is unsupported.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// SerializableMessage can be serialized over the wire.
type SerializableMessage interface {
	ctl.Message
	TypeID() uint32
}

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]SerializableMessage{
	CommandOKTypeID:        (*CommandOK)(nil),
	CommandErrTypeID:       (*CommandErr)(nil),
	SetFrequencyTypeID:     (*SetFrequency)(nil),
	AdjustFrequencyTypeID:  (*AdjustFrequency)(nil),
	SetOutputTypeID:        (*SetOutput)(nil),
	ResetTypeID:            (*Reset)(nil),
	CalibrateTypeID:        (*Calibrate)(nil),
	StatusQueryTypeID:      (*StatusQuery)(nil),
	ClockStatusTypeID:      (*ClockStatus)(nil),
	RegReadTypeID:          (*RegRead)(nil),
	RegValueTypeID:         (*RegValue)(nil),
	RegWriteTypeID:         (*RegWrite)(nil),
	BusScanTypeID:          (*BusScan)(nil),
	BusScanResultTypeID:    (*BusScanResult)(nil),
	BridgeInfoQueryTypeID:  (*BridgeInfoQuery)(nil),
	BridgeInfoTypeID:       (*BridgeInfo)(nil),
	FrequencyChangedTypeID: (*FrequencyChanged)(nil),
}

// TypedFrom creates a Typed from a serializable message.
func TypedFrom(msg ctl.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return &Typed{TypeID: s.TypeID(), Message: data}, nil
}

// Decode decodes the packet into actual message.
func (p Typed) Decode() (ctl.Message, error) {
	msgType, ok := MessageTypes[p.TypeID]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeID}
	}
	msg := msgType.NewMessage()
	if len(p.Message) > 0 {
		if err := json.Unmarshal(p.Message, msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Encode encodes the Typed to bytes.
func (p Typed) Encode() ([]byte, error) {
	return json.Marshal(&p)
}

// Kind gets message kind from type ID.
func (p Typed) Kind() uint32 {
	return p.TypeID & TypeIDMaskKind
}

// IsCommand determines if the message is a command.
func (p Typed) IsCommand() bool {
	return p.Kind() == TypeIDKindCommand
}

// IsEvent determines if the message is an event.
func (p Typed) IsEvent() bool {
	return p.Kind() == TypeIDKindEvent
}

// DecodeTyped decodes bytes into Typed.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}
