package bus

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/radioclk/si514.go/pkg/cli/sh"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
)

func parseByteArg(name, arg string) (uint8, error) {
	val, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return uint8(val), nil
}

var (
	// ScanCmd exposes BusScan command.
	ScanCmd = ishell.Cmd{
		Name: "scan",
		Help: "[LO HI]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			var msg msgs.BusScan
			if len(c.Args) >= 2 {
				var err error
				if msg.Lo, err = parseByteArg("LO", c.Args[0]); err != nil {
					c.Err(err)
					return
				}
				if msg.Hi, err = parseByteArg("HI", c.Args[1]); err != nil {
					c.Err(err)
					return
				}
			}
			sh.DoCommand(c, &msg)
		}),
	}

	// ProbeCmd tests a single address, as a one address scan.
	ProbeCmd = ishell.Cmd{
		Name: "probe",
		Help: "ADDR",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ADDR required"))
				return
			}
			addr, err := parseByteArg("ADDR", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.BusScan{Lo: addr, Hi: addr})
		}),
	}

	// RegReadCmd exposes RegRead command.
	RegReadCmd = ishell.Cmd{
		Name:    "reg.read",
		Aliases: []string{"rr"},
		Help:    "REG",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("REG required"))
				return
			}
			reg, err := parseByteArg("REG", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.RegRead{Reg: reg})
		}),
	}

	// RegWriteCmd exposes RegWrite command.
	RegWriteCmd = ishell.Cmd{
		Name:    "reg.write",
		Aliases: []string{"rw"},
		Help:    "REG VALUE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("REG and VALUE required"))
				return
			}
			reg, err := parseByteArg("REG", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			value, err := parseByteArg("VALUE", c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.RegWrite{Reg: reg, Value: value})
		}),
	}

	// InfoCmd exposes BridgeInfoQuery command.
	InfoCmd = ishell.Cmd{
		Name: "info",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.BridgeInfoQuery{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&ScanCmd,
		&ProbeCmd,
		&RegReadCmd,
		&RegWriteCmd,
		&InfoCmd,
	)
}
