package comm

import (
	"io"
	"time"
)

// Seq defines the type of frame sequence number.
type Seq byte

// NewSeq creates a random initial sequence number.
func NewSeq() Seq {
	return Seq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s Seq) Next() Seq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return Seq(n)
}

// IsValid checks if it's a valid sequence number.
// 0 and the range reserved for sync bytes are excluded.
func (s Seq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// Frame contains the information of a parsed frame.
type Frame struct {
	Seq  Seq
	Code byte
	Data []byte
}

// Checksum calculates the trailing checksum byte for a frame whose
// preceding bytes sum to n. The complete frame sums to 0 mod 256.
func Checksum(n byte) byte {
	return byte(0) - n
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	b := make([]byte, len(f.Data)+5)
	b[0], b[1] = byte(f.Seq), f.Code&0x8f
	i := 2
	if l := byte(len(f.Data)); l >= 7 {
		b[1] |= 0x70
		b[2] = l
		i = 3
	} else {
		b[1] |= (l << 4) & 0x70
	}
	copy(b[i:], f.Data)
	i += len(f.Data)
	var sum byte
	for _, v := range b[:i] {
		sum += v
	}
	b[i] = Checksum(sum)
	return b[:i+1]
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (n int, err error) {
	b := f.Bytes()
	return w.Write(b)
}
