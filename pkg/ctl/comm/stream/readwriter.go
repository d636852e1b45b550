package stream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPacketSize bounds a single packet. Control messages are tiny;
// anything bigger means a corrupt or hostile stream.
const MaxPacketSize = 64 * 1024

// ReadWriter implements PacketReadWriter over a byte stream, framing
// each packet with a 4-byte little-endian length prefix.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter over a byte stream.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var head [4]byte
	if _, err := io.ReadFull(p, head[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(head[:])
	if size > MaxPacketSize {
		return nil, fmt.Errorf("packet too large: %d", size)
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p, pkt); err != nil {
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if len(pkt) > MaxPacketSize {
		return fmt.Errorf("packet too large: %d", len(pkt))
	}
	var head [4]byte
	binary.LittleEndian.PutUint32(head[:], uint32(len(pkt)))
	if _, err := p.Write(head[:]); err != nil {
		return err
	}
	_, err := p.Write(pkt)
	return err
}
