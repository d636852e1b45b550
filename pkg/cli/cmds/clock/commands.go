package clock

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/radioclk/si514.go/pkg/cli/sh"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
)

func parseFreq(arg string) (uint32, error) {
	val, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid FREQ: %v", err)
	}
	return uint32(val), nil
}

var (
	// FreqCmd exposes SetFrequency command.
	FreqCmd = ishell.Cmd{
		Name:    "freq",
		Aliases: []string{"f"},
		Help:    "FREQ(Hz)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("FREQ required"))
				return
			}
			freq, err := parseFreq(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.SetFrequency{Freq: freq})
		}),
	}

	// AdjustCmd exposes AdjustFrequency command.
	AdjustCmd = ishell.Cmd{
		Name:    "adjust",
		Aliases: []string{"adj", "tune"},
		Help:    "FREQ(Hz)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("FREQ required"))
				return
			}
			freq, err := parseFreq(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.AdjustFrequency{Freq: freq})
		}),
	}

	// OutputCmd exposes SetOutput command.
	OutputCmd = ishell.Cmd{
		Name: "output",
		Help: "on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("on|off required"))
				return
			}
			var enable bool
			switch c.Args[0] {
			case "on":
				enable = true
			case "off":
			default:
				c.Err(fmt.Errorf("invalid argument %q", c.Args[0]))
				return
			}
			sh.DoCommand(c, &msgs.SetOutput{Enable: enable})
		}),
	}

	// ResetCmd exposes Reset command.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.Reset{})
		}),
	}

	// CalCmd exposes Calibrate command.
	CalCmd = ishell.Cmd{
		Name:    "calibrate",
		Aliases: []string{"cal"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.Calibrate{})
		}),
	}

	// StatusCmd exposes StatusQuery command.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.StatusQuery{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&FreqCmd,
		&AdjustCmd,
		&OutputCmd,
		&ResetCmd,
		&CalCmd,
		&StatusCmd,
	)
}
