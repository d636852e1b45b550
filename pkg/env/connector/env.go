// Package connector provides common configuration for tools
// connecting to clock agents.
package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/comm/mqtt"
	"github.com/radioclk/si514.go/pkg/ctl/comm/stream"
	"github.com/radioclk/si514.go/pkg/ctl/comm/websocket"
	"github.com/radioclk/si514.go/pkg/env"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref ctl.ClockRef

	// RegistryURL specifies the URL of the agent registry, or the
	// direct address of a single agent.
	// e.g. mqtt://host:port/topic-prefix, tcp://host:port, ws://host:port
	RegistryURL string
}

var defaultConfig = Config{
	RegistryURL: "mqtt://localhost:1883/si514/",
}

func init() {
	env.StringVar(&defaultConfig.Ref.Type, "SI514_TYPE")
	env.StringVar(&defaultConfig.Ref.ID, "SI514_ID")
	env.StringVar(&defaultConfig.RegistryURL, "SI514_REGISTRY_URL")
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "clock-type", defaultConfig.Ref.Type, "Clock agent type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "clock-id", defaultConfig.Ref.ID, "Clock agent ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "reg", defaultConfig.RegistryURL, "Agent registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (ctl.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt":
		return mqtt.NewConnector(c.RegistryURL)
	case "tcp":
		return stream.NewConnector(parsedURL.Host), nil
	case "ws":
		return websocket.NewConnector(c.RegistryURL), nil
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() ctl.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Connect directly connects to a clock agent.
func (c *Config) Connect() (ctl.Conn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("clock type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.TODO(), c.Ref)
}

// MustConnect connects to a clock agent or fails.
func (c *Config) MustConnect() ctl.Conn {
	conn, err := c.Connect()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}
