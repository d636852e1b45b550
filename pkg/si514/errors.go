package si514

import "fmt"

// FrequencyRangeError indicates a requested frequency outside the
// supported output range.
type FrequencyRangeError struct {
	Freq uint32
}

// Error implements error.
func (e *FrequencyRangeError) Error() string {
	return fmt.Sprintf("frequency %d Hz out of range %d..%d Hz", e.Freq, MinFreq, MaxFreq)
}

// MismatchError indicates the feedback divider read back from the chip
// doesn't match the value this driver programmed, so a small frequency
// change can't be applied safely.
type MismatchError struct {
	WantInt  uint16
	WantFrac uint32
	GotInt   uint16
	GotFrac  uint32
}

// Error implements error.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("M value (%d, %d) read from clock does not match expected (%d, %d)",
		e.GotInt, e.GotFrac, e.WantInt, e.WantFrac)
}

// VerifyError indicates a register readback didn't match the written value.
type VerifyError struct {
	Reg  uint8
	Want byte
	Got  byte
}

// Error implements error.
func (e *VerifyError) Error() string {
	return fmt.Sprintf("register %d verify failed: wrote %#02x, read %#02x", e.Reg, e.Want, e.Got)
}
