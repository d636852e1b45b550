// Package msgs provides control plane protocol support and all
// message schemas.
package msgs

// The control protocol is communicated between a clock agent and the
// tools driving it, and is transport-agnostic.
//
// Producer: clock agent
// Consumer: control tools
