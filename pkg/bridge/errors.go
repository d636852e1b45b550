package bridge

import (
	"errors"

	"github.com/radioclk/si514.go/pkg/bridge/comm"
)

var (
	// ErrAddrNAK indicates no device acknowledged the address.
	ErrAddrNAK = errors.New("i2c address not acknowledged")
	// ErrDataNAK indicates the device rejected a data byte.
	ErrDataNAK = errors.New("i2c data not acknowledged")
	// ErrBusBusy indicates the bridge lost arbitration or found the bus held.
	ErrBusBusy = errors.New("i2c bus busy")
	// ErrBadRequest indicates the bridge rejected a malformed command.
	ErrBadRequest = errors.New("bridge rejected request")
	// ErrOverflow indicates the requested transfer exceeds the bridge buffer.
	ErrOverflow = errors.New("transfer too large for bridge")
)

// statusErr maps bridge status codes to errors.
func statusErr(err error) error {
	cmdErr, ok := err.(*comm.CommandError)
	if !ok {
		return err
	}
	switch cmdErr.Status {
	case StatusAddrNAK:
		return ErrAddrNAK
	case StatusDataNAK:
		return ErrDataNAK
	case StatusBusBusy:
		return ErrBusBusy
	case StatusBadRequest:
		return ErrBadRequest
	case StatusOverflow:
		return ErrOverflow
	}
	return cmdErr
}
