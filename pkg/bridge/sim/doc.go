// Package sim provides a simulated bridge with emulated peripherals
// on its I2C bus. It speaks the same wire protocol as the firmware, so
// the host side stack can be exercised end-to-end without hardware.
package sim
