package comm

import (
	"errors"
	"fmt"
)

// ErrNotReady indicates the link has not completed the sync handshake.
var ErrNotReady = errors.New("link not ready")

// ErrNoReply fails a pending command when the bridge replied to a
// later one, implying the earlier request was dropped.
var ErrNoReply = errors.New("no reply")

// CommandError wraps the status code from an error reply.
type CommandError struct {
	Status byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("bridge error status %d", e.Status)
}
