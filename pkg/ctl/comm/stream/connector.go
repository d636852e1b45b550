package stream

import (
	"context"
	"net"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/comm"
)

// Connector implements ctl.Connector over a plain TCP connection to a
// single agent. There is no registry behind it, so discovery always
// comes back empty.
type Connector struct {
	Addr string
}

// NewConnector creates a Connector dialing addr.
func NewConnector(addr string) *Connector {
	return &Connector{Addr: addr}
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) ([]ctl.ClockInfo, error) {
	return nil, nil
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref ctl.ClockRef) (ctl.Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, err
	}
	conn := &Conn{}
	conn.Init(New(nc))
	return conn, nil
}

// Conn implements ctl.Conn over a TCP connection.
type Conn struct {
	comm.ClockConn
}
