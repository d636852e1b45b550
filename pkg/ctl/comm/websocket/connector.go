package websocket

import (
	"context"

	"golang.org/x/net/websocket"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/comm"
)

// Connector implements ctl.Connector over a websocket connection to a
// single agent. There is no registry behind it, so discovery always
// comes back empty.
type Connector struct {
	URL    string
	Origin string
}

// NewConnector creates a Connector dialing url.
func NewConnector(url string) *Connector {
	return &Connector{URL: url, Origin: "http://localhost/"}
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) ([]ctl.ClockInfo, error) {
	return nil, nil
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref ctl.ClockRef) (ctl.Conn, error) {
	ws, err := websocket.Dial(c.URL, "", c.Origin)
	if err != nil {
		return nil, err
	}
	conn := &Conn{}
	conn.Init(New(ws))
	return conn, nil
}

// Conn implements ctl.Conn over a websocket connection.
type Conn struct {
	comm.ClockConn
}
