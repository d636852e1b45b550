// Package comm implements the control plane message pipe shared by
// all remote transports.
package comm

// PacketReader reads one message payload at a time.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes one message payload at a time.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter combines PacketReader and PacketWriter.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
