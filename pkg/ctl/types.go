// Package ctl defines the control plane between clock agents and the
// tools driving them.
package ctl

import (
	"context"
)

// Message is a unit of communication on the control plane.
type Message interface {
	// NewMessage creates an empty instance of the same message type.
	NewMessage() Message
}

// Command represents a received command to be processed.
type Command interface {
	Msg() Message
	Done(Message) error
}

// CommandHandler processes received commands.
type CommandHandler interface {
	HandleCommand(context.Context, Command) error
}

// HandleCommandFunc is func form of CommandHandler.
type HandleCommandFunc func(context.Context, Command) error

// HandleCommand implements CommandHandler.
func (f HandleCommandFunc) HandleCommand(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Registrar registers a clock agent to a registry and delivers
// commands from connected tools.
type Registrar interface {
	// SendEvent sends an event to connected tools.
	SendEvent(context.Context, Message) error
}

// ClockRef is a reference to a registered clock agent.
type ClockRef struct {
	// Type is the agent type.
	Type string
	// ID is unique ID of the agent.
	ID string
}

// Name retrieves the name from ref.
func (r ClockRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates ClockRef is valid.
func (r ClockRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ClockMeta provides metadata for a clock agent.
type ClockMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ClockInfo provides information of a clock agent.
type ClockInfo struct {
	Ref  ClockRef
	Meta ClockMeta
}

// Connector is used by tools to connect to a clock agent.
type Connector interface {
	// Discover enumerates registered agents.
	Discover(context.Context) ([]ClockInfo, error)
	// Connect connects to the specified agent.
	Connect(context.Context, ClockRef) (Conn, error)
}

// Conn is the connection to a clock agent.
type Conn interface {
	// DoCommand executes a command.
	DoCommand(Message) CommandFuture
}

// Result represents result of a command.
type Result struct {
	Msg Message
	Err error
}

// CommandFuture is the future of a sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
