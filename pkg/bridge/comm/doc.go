// Package comm implements the wire protocol of the USB-serial I2C bridge.
package comm

// The protocol runs between the bridge firmware and the host over a
// byte stream (USB CDC serial) and focuses on keeping the two ends
// recoverable from dropped or corrupted bytes.
//
// Synchronization uses a request/acknowledge handshake exchanging the
// initial sequence number of each peer. Every frame starts with the
// sender's sequence number and ends with a checksum byte, so a frame
// that arrives damaged forces a resync instead of reaching the I2C bus
// as a bogus transaction.
//
// Producer: bridge firmware
// Consumer: host-side controller
