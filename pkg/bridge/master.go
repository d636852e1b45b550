package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/radioclk/si514.go/pkg/bridge/comm"
)

// DefaultTimeout is the default per-transaction timeout.
const DefaultTimeout = time.Second

// Master performs I2C transactions through the bridge.
type Master struct {
	Timeout time.Duration

	client *comm.Client
}

// NewMaster creates a Master over a protocol client.
func NewMaster(client *comm.Client) *Master {
	return &Master{Timeout: DefaultTimeout, client: client}
}

// Client gets the wrapped protocol client.
func (m *Master) Client() *comm.Client {
	return m.client
}

// Run wraps the protocol client to implement Runnable.
func (m *Master) Run(ctx context.Context) error {
	return m.client.Run(ctx)
}

// Ping verifies the link roundtrip without touching the I2C bus.
func (m *Master) Ping(ctx context.Context) error {
	_, err := m.do(ctx, CmdPing, nil)
	return err
}

// WriteReg writes data to a device register.
func (m *Master) WriteReg(ctx context.Context, addr, reg uint8, data []byte) error {
	if addr > 0x7f {
		return fmt.Errorf("invalid i2c address %#x", addr)
	}
	if len(data) > MaxTransfer {
		return ErrOverflow
	}
	payload := make([]byte, len(data)+2)
	payload[0], payload[1] = addr, reg
	copy(payload[2:], data)
	_, err := m.do(ctx, CmdWrite, payload)
	return err
}

// ReadReg reads n bytes from a device register.
func (m *Master) ReadReg(ctx context.Context, addr, reg uint8, n int) ([]byte, error) {
	if addr > 0x7f {
		return nil, fmt.Errorf("invalid i2c address %#x", addr)
	}
	if n <= 0 || n > MaxTransfer {
		return nil, ErrOverflow
	}
	res, err := m.do(ctx, CmdRead, []byte{addr, reg, byte(n)})
	if err != nil {
		return nil, err
	}
	if len(res.Data) != n {
		return nil, fmt.Errorf("short read: want %d bytes, got %d", n, len(res.Data))
	}
	return res.Data, nil
}

// Probe tests whether a device acknowledges the address.
func (m *Master) Probe(ctx context.Context, addr uint8) (bool, error) {
	if addr > 0x7f {
		return false, fmt.Errorf("invalid i2c address %#x", addr)
	}
	res, err := m.do(ctx, CmdProbe, []byte{addr})
	if err != nil {
		return false, err
	}
	return len(res.Data) == 1 && res.Data[0] != 0, nil
}

// Scan probes an address range and returns the addresses which acknowledged.
func (m *Master) Scan(ctx context.Context, lo, hi uint8) ([]uint8, error) {
	if lo > hi || hi > 0x7f {
		return nil, fmt.Errorf("invalid address range %#x-%#x", lo, hi)
	}
	var found []uint8
	for addr := lo; ; addr++ {
		ok, err := m.Probe(ctx, addr)
		if err != nil {
			return found, err
		}
		if ok {
			found = append(found, addr)
		}
		if addr == hi {
			break
		}
	}
	return found, nil
}

// Info queries the firmware about itself.
func (m *Master) Info(ctx context.Context) (Info, error) {
	res, err := m.do(ctx, CmdInfo, nil)
	if err != nil {
		return Info{}, err
	}
	if len(res.Data) < 3 {
		return Info{}, fmt.Errorf("short info reply: %d bytes", len(res.Data))
	}
	return Info{Major: res.Data[0], Minor: res.Data[1], MaxPayload: res.Data[2]}, nil
}

func (m *Master) do(ctx context.Context, code byte, data []byte) (comm.Result, error) {
	cmd := m.client.Do(&comm.Frame{Code: code, Data: data})
	timeout := m.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	select {
	case res := <-cmd.ResultChan():
		if res.Err != nil {
			return res, statusErr(res.Err)
		}
		return res, nil
	case <-ctx.Done():
		return comm.Result{}, ctx.Err()
	case <-time.After(timeout):
		return comm.Result{}, context.DeadlineExceeded
	}
}
