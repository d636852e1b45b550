package clock

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/radioclk/si514.go/pkg/bridge"
	"github.com/radioclk/si514.go/pkg/bridge/comm"
	"github.com/radioclk/si514.go/pkg/env"
	"github.com/radioclk/si514.go/pkg/serial"
	"github.com/radioclk/si514.go/pkg/si514"
)

// Config provides common options to attach the clock chip.
type Config struct {
	// Device is the serial device of the bridge.
	Device string
	// Baud is the serial baud rate.
	Baud int
	// Addr is the I2C address of the chip.
	Addr uint
	// XtalCorrection is the crystal error in Hz normalized to 10 MHz.
	XtalCorrection float64
	// Verify enables readback verification of register writes.
	Verify bool
}

var defaultConfig = Config{
	Device: "/dev/ttyUSB0",
	Baud:   serial.DefaultBaud,
	Addr:   uint(si514.DefaultAddr),
}

func init() {
	env.StringVar(&defaultConfig.Device, "SI514_SERIAL")
	if val := os.Getenv("SI514_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "serial", defaultConfig.Device, "Serial device of the bridge.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.UintVar(&defaultConfig.Addr, "addr", defaultConfig.Addr, "I2C address of the clock chip.")
	flag.Float64Var(&defaultConfig.XtalCorrection, "xtal-correction", defaultConfig.XtalCorrection,
		"Crystal error in Hz normalized to 10 MHz.")
	flag.BoolVar(&defaultConfig.Verify, "verify", defaultConfig.Verify, "Verify register writes by readback.")
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

// Options derives the device options.
func (c *Config) Options() []si514.Option {
	return []si514.Option{
		si514.WithAddress(uint8(c.Addr)),
		si514.WithXtalCorrection(c.XtalCorrection),
		si514.WithVerify(c.Verify),
	}
}

// Open opens the serial device and builds a session around it.
func (c *Config) Open() (*Session, error) {
	port, err := serial.Open(c.Device, c.Baud)
	if err != nil {
		return nil, err
	}
	link := comm.NewLink(port)
	link.ReadTimeout = true
	master := bridge.NewMaster(comm.NewClient(link))
	return &Session{
		Port:       port,
		Master:     master,
		Controller: NewController(master, c.Options()...),
	}, nil
}

// Session owns an open bridge connection and the controller on top.
type Session struct {
	Port       *serial.Port
	Master     *bridge.Master
	Controller *Controller
}

// WaitReady waits until the link is synchronized.
func (s *Session) WaitReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !s.Master.Client().Link().State().IsReady() {
		if time.Now().After(deadline) {
			return fmt.Errorf("bridge not responding")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// Run implements Runnable, processing the link until the context is
// canceled.
func (s *Session) Run(ctx context.Context) error {
	client := s.Master.Client()
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case state := <-client.StateChan():
				glog.V(1).Infof("link state %d", state)
			case frm := <-client.EventChan():
				glog.V(2).Infof("bridge event %#02x", frm.Code)
			}
		}
	}()
	err := client.Run(subCtx)
	s.Port.Close()
	return err
}

// Close releases the serial device.
func (s *Session) Close() error {
	return s.Port.Close()
}
