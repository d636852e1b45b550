// Package agent provides common configuration for clock agents.
package agent

import (
	"flag"
	"fmt"
	"log"

	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/comm"
	"github.com/radioclk/si514.go/pkg/ctl/comm/mqtt"
	"github.com/radioclk/si514.go/pkg/ctl/comm/stream"
	"github.com/radioclk/si514.go/pkg/ctl/comm/websocket"
	"github.com/radioclk/si514.go/pkg/env"
	fx "github.com/radioclk/si514.go/pkg/framework"
)

// Config provides common options to setup an env for clock agents.
type Config struct {
	Info ctl.ClockInfo

	// MQTTBrokerURL specifies the MQTT broker to register with.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// ListenAddr accepts direct TCP connections when set.
	ListenAddr string
	// WSListenAddr accepts websocket connections when set.
	WSListenAddr string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/si514/",
}

func init() {
	env.StringVar(&defaultConfig.MQTTBrokerURL, "SI514_MQTT_URL")
	defaultConfig.Info.Ref.ID = env.MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Agent type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Agent ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.ListenAddr, "listen", defaultConfig.ListenAddr, "TCP listen address, empty to disable")
	flag.StringVar(&defaultConfig.WSListenAddr, "listen-ws", defaultConfig.WSListenAddr, "Websocket listen address, empty to disable")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetAgentType should be called in init with basic info about the agent.
func SetAgentType(typ string, meta ctl.ClockMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the env for clock agents.
type Env struct {
	Config    *Config
	Registrar *comm.RegistrarMux
	Runners   []fx.Runnable
}

// NewEnv creates Env from config, wiring all configured registrars to
// the command handler.
func (c *Config) NewEnv(handler ctl.CommandHandler) (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("agent type and id must be specified")
	}
	e := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info, handler)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		e.Registrar.Add(reg)
		e.Runners = append(e.Runners, reg)
	}
	if c.ListenAddr != "" {
		srv := stream.NewServer(c.ListenAddr, handler)
		e.Registrar.Add(srv)
		e.Runners = append(e.Runners, srv)
	}
	if c.WSListenAddr != "" {
		srv := websocket.NewServer(c.WSListenAddr, handler)
		e.Registrar.Add(srv)
		e.Runners = append(e.Runners, srv)
	}
	if len(e.Runners) == 0 {
		return nil, fmt.Errorf("at least one registrar is required")
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(handler ctl.CommandHandler) *Env {
	e, err := c.NewEnv(handler)
	if err != nil {
		log.Fatalln(err)
	}
	return e
}
