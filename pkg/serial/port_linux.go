package serial

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var baudRates = map[int]uint32{
	1200:    unix.B1200,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
}

// Port is an open serial device configured raw 8N1.
type Port struct {
	f *os.File
}

// Open opens the device exclusively in raw 8N1 mode. Reads return
// zero bytes after a 100ms timeout, which the link layer treats as an
// inter-byte timeout.
func Open(device string, baud int) (*Port, error) {
	rate, ok := baudRates[baud]
	if !ok {
		return nil, fmt.Errorf("unsupported baud rate %d", baud)
	}
	f, err := os.OpenFile(device, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}
	if err = setup(int(f.Fd()), rate); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %v", device, err)
	}
	return &Port{f: f}, nil
}

func setup(fd int, rate uint32) error {
	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		return fmt.Errorf("TIOCEXCL: %v", err)
	}
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("TCGETS: %v", err)
	}
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | rate
	t.Ispeed, t.Ospeed = rate, rate
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 1
	if err = unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("TCSETS: %v", err)
	}
	if err = unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return fmt.Errorf("TCFLSH: %v", err)
	}
	return nil
}

// Read reads available bytes, returning (0, nil) on timeout.
func (p *Port) Read(b []byte) (int, error) {
	return p.f.Read(b)
}

// Write writes bytes to the device.
func (p *Port) Write(b []byte) (int, error) {
	return p.f.Write(b)
}

// Close releases the device.
func (p *Port) Close() error {
	return p.f.Close()
}
