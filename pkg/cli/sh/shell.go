package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"reflect"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/radioclk/si514.go/pkg/clock"
	"github.com/radioclk/si514.go/pkg/ctl"
	ctlcomm "github.com/radioclk/si514.go/pkg/ctl/comm"
	"github.com/radioclk/si514.go/pkg/ctl/msgs"
	env "github.com/radioclk/si514.go/pkg/env/connector"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  *env.Config
	Session *ConnSession
}

// ConnSession is a live connection to a clock, either through a
// registry or over a locally attached bridge.
type ConnSession struct {
	Ctx    context.Context
	Cancel func()
	Name   string
	Conn   ctl.Conn

	local *clock.Session
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&OpenCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints ClockInfo into friendly string for display.
func FormatInfo(info ctl.ClockInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// DoCommand runs a command and waits for result.
func DoCommand(c *ishell.Context, msg ctl.Message) (err error) {
	s := ShellFrom(c)
	if s.Session == nil {
		err = fmt.Errorf("not connected")
		c.Err(err)
		return
	}
	f := s.Session.Conn.DoCommand(msg)
	select {
	case res := <-f.ResultChan():
		if res.Err != nil {
			c.Err(res.Err)
			return res.Err
		}
		if s.OutputJSON {
			out, err := json.Marshal(res.Msg)
			if err != nil {
				c.Err(err)
				return err
			}
			c.Println(string(out))
			return nil
		}
		if _, ok := res.Msg.(*msgs.CommandOK); ok {
			c.Println("OK")
			return nil
		}
		out, _ := json.Marshal(res.Msg)
		c.Printf("%s %s\n",
			reflect.Indirect(reflect.ValueOf(res.Msg)).Type().Name(),
			string(out))
	case <-time.After(3 * time.Second):
		c.Err(fmt.Errorf("command timeout"))
		return context.DeadlineExceeded
	}
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverClocks discovers registered clock agents.
func (s *Shell) DiscoverClocks(filter func(ctl.ClockInfo) bool) (ctl.Connector, []ctl.ClockInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, nil, err
	}
	infoList, err := connector.Discover(context.TODO())
	if err != nil {
		return connector, nil, err
	}
	if filter != nil {
		items := make([]ctl.ClockInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return connector, infoList, nil
}

// SelectClock discovers clock agents and asks for a choice.
func (s *Shell) SelectClock(filter func(ctl.ClockInfo) bool) (ctl.Connector, *ctl.ClockInfo, error) {
	connector, infoList, err := s.DiscoverClocks(filter)
	if err != nil {
		return nil, nil, err
	}
	if len(infoList) == 0 {
		return connector, nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, nil, fmt.Errorf("more than 1 clocks discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = info.Ref.Name()
			if info.Meta.Description != "" {
				items[n] += ": " + info.Meta.Description
			}
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}

	return connector, &infoList[index], nil
}

// Connect connects the clock agent with ref.
func (s *Shell) Connect(ref ctl.ClockRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	session := &ConnSession{Name: ref.Name()}
	session.Ctx, session.Cancel = context.WithCancel(context.Background())
	if session.Conn, err = connector.Connect(session.Ctx, ref); err != nil {
		session.Cancel()
		return err
	}
	s.start(session)
	return nil
}

// Open opens a local session over a directly attached bridge.
func (s *Shell) Open(conf *clock.Config) error {
	local, err := conf.Open()
	if err != nil {
		return err
	}
	session := &ConnSession{Name: conf.Device, local: local}
	session.Ctx, session.Cancel = context.WithCancel(context.Background())
	go local.Run(session.Ctx)
	if err = local.WaitReady(3 * time.Second); err != nil {
		session.Cancel()
		return err
	}
	session.Conn = ctlcomm.NewLocalConn(session.Ctx, local.Controller)
	s.start(session)
	return nil
}

func (s *Shell) start(session *ConnSession) {
	if s.Session != nil {
		s.Session.Cancel()
	}
	if runnable, ok := session.Conn.(interface {
		Run(context.Context) error
	}); ok {
		go runnable.Run(session.Ctx)
	}
	s.Session = session
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", session.Name))
}

// Disconnect disconnects current session.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Cancel()
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Ref.Name(), err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers registered clock agents.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			_, infoList, err := s.DiscoverClocks(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []ctl.ClockInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No clocks found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a clock agent.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "TYPE ID",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref ctl.ClockRef
			if len(c.Args) >= 2 {
				ref.Type, ref.ID = c.Args[0], c.Args[1]
			} else {
				var filter func(ctl.ClockInfo) bool
				if len(c.Args) == 1 {
					filter = func(info ctl.ClockInfo) bool {
						return info.Ref.Type == c.Args[0]
					}
				}
				_, info, err := s.SelectClock(filter)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no clock discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// OpenCmd opens a local session over a directly attached bridge.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[DEVICE [BAUD]]",
		Func: func(c *ishell.Context) {
			conf := clock.NewConfig()
			if len(c.Args) > 0 {
				conf.Device = c.Args[0]
			}
			if len(c.Args) > 1 {
				baud, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(fmt.Errorf("invalid BAUD: %v", err))
					return
				}
				conf.Baud = baud
			}
			if err := ShellFrom(c).Open(conf); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// DisconnectCmd disconnects current session.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
