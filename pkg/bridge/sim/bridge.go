package sim

import (
	"context"
	"io"
	"sync"

	"github.com/radioclk/si514.go/pkg/bridge"
	"github.com/radioclk/si514.go/pkg/bridge/comm"
)

// Firmware version reported by CmdInfo.
const (
	VersionMajor uint8 = 1
	VersionMinor uint8 = 0
)

// Peripheral emulates one device on the simulated I2C bus.
type Peripheral interface {
	Addr() uint8
	WriteReg(reg uint8, data []byte) error
	ReadReg(reg uint8, n int) ([]byte, error)
}

// Bridge emulates the bridge firmware over a byte stream.
type Bridge struct {
	link *comm.Link

	peripherals map[uint8]Peripheral
	lock        sync.RWMutex
}

// NewBridge creates a Bridge over a byte stream.
func NewBridge(rw io.ReadWriter) *Bridge {
	b := &Bridge{
		link:        comm.NewLink(rw),
		peripherals: make(map[uint8]Peripheral),
	}
	b.link.Handler = comm.HandleFrameFunc(b.handleFrame)
	return b
}

// Link gets the wrapped protocol link.
func (b *Bridge) Link() *comm.Link {
	return b.link
}

// Add attaches a peripheral to the bus.
func (b *Bridge) Add(p Peripheral) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.peripherals[p.Addr()] = p
}

// Remove detaches the peripheral at the address.
func (b *Bridge) Remove(addr uint8) {
	b.lock.Lock()
	defer b.lock.Unlock()
	delete(b.peripherals, addr)
}

// Run processes the link in the background.
func (b *Bridge) Run(ctx context.Context) error {
	return b.link.Run(ctx)
}

func (b *Bridge) peripheral(addr uint8) Peripheral {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.peripherals[addr]
}

func (b *Bridge) handleFrame(ctx context.Context, frm *comm.Frame) {
	if frm.Code&0x80 != 0 {
		return
	}
	data, status := b.execute(frm.Code&0x0e, frm.Data)
	reply := &comm.Frame{Data: make([]byte, len(data)+1)}
	reply.Data[0] = byte(frm.Seq)
	copy(reply.Data[1:], data)
	if status != 0 {
		reply.Code = (status&7)<<1 | 1
	}
	b.link.Send(reply)
}

func (b *Bridge) execute(code byte, payload []byte) ([]byte, byte) {
	switch code {
	case bridge.CmdPing:
		return nil, 0
	case bridge.CmdWrite:
		if len(payload) < 2 || len(payload) > bridge.MaxTransfer+2 {
			return nil, bridge.StatusBadRequest
		}
		p := b.peripheral(payload[0])
		if p == nil {
			return nil, bridge.StatusAddrNAK
		}
		if err := p.WriteReg(payload[1], payload[2:]); err != nil {
			return nil, statusOf(err)
		}
		return nil, 0
	case bridge.CmdRead:
		if len(payload) != 3 {
			return nil, bridge.StatusBadRequest
		}
		n := int(payload[2])
		if n == 0 || n > bridge.MaxTransfer {
			return nil, bridge.StatusOverflow
		}
		p := b.peripheral(payload[0])
		if p == nil {
			return nil, bridge.StatusAddrNAK
		}
		data, err := p.ReadReg(payload[1], n)
		if err != nil {
			return nil, statusOf(err)
		}
		return data, 0
	case bridge.CmdProbe:
		if len(payload) != 1 {
			return nil, bridge.StatusBadRequest
		}
		if b.peripheral(payload[0]) == nil {
			return []byte{0}, 0
		}
		return []byte{1}, 0
	case bridge.CmdInfo:
		return []byte{VersionMajor, VersionMinor, bridge.MaxTransfer}, 0
	}
	return nil, bridge.StatusBadRequest
}

// statusOf maps peripheral errors to wire status codes.
func statusOf(err error) byte {
	switch err {
	case bridge.ErrAddrNAK:
		return bridge.StatusAddrNAK
	case bridge.ErrDataNAK:
		return bridge.StatusDataNAK
	case bridge.ErrBusBusy:
		return bridge.StatusBusBusy
	case bridge.ErrOverflow:
		return bridge.StatusOverflow
	}
	return bridge.StatusBadRequest
}
