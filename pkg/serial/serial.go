// Package serial opens serial devices in raw mode for the bridge link.
package serial

// DefaultBaud is the baud rate the bridge firmware uses.
const DefaultBaud = 115200
