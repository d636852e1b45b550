// Package bridge provides host-side access to the USB-serial I2C bridge.
//
// The bridge firmware is a stateless relay: every command received over
// the serial link maps to a single I2C transaction against the attached
// bus, and the outcome (read data, or an acknowledgement/status) is
// reported back in the reply.
package bridge
