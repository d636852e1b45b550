// Package clock implements the agent side command processing for an
// Si514 attached through the I2C bridge.
package clock

import (
	"context"

	"github.com/golang/glog"

	"github.com/radioclk/si514.go/pkg/bridge"
	"github.com/radioclk/si514.go/pkg/ctl"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
	"github.com/radioclk/si514.go/pkg/si514"
)

// Default address range of a bus scan.
const (
	ScanLo uint8 = 0x08
	ScanHi uint8 = 0x77
)

// Controller processes control plane commands against the clock chip
// and the bridge.
type Controller struct {
	Device *si514.Device
	Master *bridge.Master
	// Events receives a FrequencyChanged event after each frequency
	// change, when set.
	Events ctl.Registrar
}

// NewController creates a Controller over a bridge master.
func NewController(master *bridge.Master, opts ...si514.Option) *Controller {
	return &Controller{
		Device: si514.New(master, opts...),
		Master: master,
	}
}

// HandleCommand implements CommandHandler.
func (c *Controller) HandleCommand(ctx context.Context, cmd ctl.Command) error {
	switch msg := cmd.Msg().(type) {
	case *msgs.SetFrequency:
		glog.V(1).Infof("set freq %d", msg.Freq)
		if err := c.Device.SetFrequency(ctx, msg.Freq); err != nil {
			return err
		}
		c.emitFreqChanged(ctx, msg.Freq)
		return cmd.Done(msgs.NewCommandOK())
	case *msgs.AdjustFrequency:
		glog.V(1).Infof("adjust freq %d", msg.Freq)
		if err := c.Device.AdjustFrequency(ctx, msg.Freq); err != nil {
			return err
		}
		c.emitFreqChanged(ctx, msg.Freq)
		return cmd.Done(msgs.NewCommandOK())
	case *msgs.SetOutput:
		var err error
		if msg.Enable {
			err = c.Device.OutputEnable(ctx)
		} else {
			err = c.Device.OutputDisable(ctx)
		}
		if err != nil {
			return err
		}
		return cmd.Done(msgs.NewCommandOK())
	case *msgs.Reset:
		if err := c.Device.Reset(ctx); err != nil {
			return err
		}
		return cmd.Done(msgs.NewCommandOK())
	case *msgs.Calibrate:
		if err := c.Device.Calibrate(ctx); err != nil {
			return err
		}
		return cmd.Done(msgs.NewCommandOK())
	case *msgs.StatusQuery:
		status, err := c.Device.ReadConfig(ctx)
		if err != nil {
			return err
		}
		return cmd.Done(&msgs.ClockStatus{
			Freq:          status.Frequency,
			MInt:          status.Params.MInt,
			MFrac:         status.Params.MFrac,
			HSDiv:         status.Params.HSDiv,
			LSDiv:         status.Params.LSDiv,
			OutputEnabled: status.OutputEnabled,
		})
	case *msgs.RegRead:
		value, err := c.Device.ReadRegister(ctx, msg.Reg)
		if err != nil {
			return err
		}
		return cmd.Done(&msgs.RegValue{Reg: msg.Reg, Value: value})
	case *msgs.RegWrite:
		if err := c.Device.WriteRegister(ctx, msg.Reg, msg.Value); err != nil {
			return err
		}
		return cmd.Done(msgs.NewCommandOK())
	case *msgs.BusScan:
		lo, hi := msg.Lo, msg.Hi
		if lo == 0 && hi == 0 {
			lo, hi = ScanLo, ScanHi
		}
		addrs, err := c.Master.Scan(ctx, lo, hi)
		if err != nil {
			return err
		}
		if addrs == nil {
			addrs = []uint8{}
		}
		return cmd.Done(&msgs.BusScanResult{Addrs: addrs})
	case *msgs.BridgeInfoQuery:
		info, err := c.Master.Info(ctx)
		if err != nil {
			return err
		}
		return cmd.Done(&msgs.BridgeInfo{
			Major:      info.Major,
			Minor:      info.Minor,
			MaxPayload: info.MaxPayload,
		})
	}
	return msgs.ErrUnsupportedCommand
}

func (c *Controller) emitFreqChanged(ctx context.Context, freq uint32) {
	if c.Events == nil {
		return
	}
	if err := c.Events.SendEvent(ctx, &msgs.FrequencyChanged{Freq: freq}); err != nil {
		glog.Warningf("send event: %v", err)
	}
}
