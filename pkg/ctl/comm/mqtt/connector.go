package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/comm"
	fx "github.com/radioclk/si514.go/pkg/framework"
)

// Connector implements ctl.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
	}, nil
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) (res []ctl.ClockInfo, err error) {
	q := NewQueue(c.options, c.topicPrefix)
	q.Connect()
	defer q.Close()
	resCh := make(chan ctl.ClockInfo, 1)
	q.Sub("+/+/meta", Handler(func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		if len(items) != 3 || len(payload) == 0 {
			// a cleared retained meta means the agent is gone
			return
		}
		info := ctl.ClockInfo{Ref: ctl.ClockRef{Type: items[0], ID: items[1]}}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("bad meta on %q: %v", topic, err)
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref ctl.ClockRef) (ctl.Conn, error) {
	conn := &Conn{
		Queue: NewQueue(c.options, c.topicPrefix),
	}
	conn.rw = ForConnector(conn.Queue, ref)
	conn.Init(conn.rw)
	token := conn.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return conn, nil
}

// Conn implements ctl.Conn using MQTT.
type Conn struct {
	comm.ClockConn
	Queue *Queue

	rw *ReadWriter
}

// Run implements Runnable, running both the subscription and the
// message pipe.
func (c *Conn) Run(ctx context.Context) error {
	defer c.Queue.Close()
	return fx.NewRunnerWith(ctx).
		Go(c.rw, &c.ClockConn).
		Wait()
}
