package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"time"
)

// FrameHandler is called when a frame is received.
type FrameHandler interface {
	HandleFrame(context.Context, *Frame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frm *Frame) {
	f(ctx, frm)
}

// StateNotifier is called when the link state changed.
type StateNotifier interface {
	StateChanged(context.Context, SyncState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, SyncState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state SyncState) {
	f(ctx, state)
}

// Link sends/receives frames over a byte stream.
type Link struct {
	ReadWriter  io.ReadWriter
	Handler     FrameHandler
	Notifier    StateNotifier
	Timeout     time.Duration
	ReadTimeout bool // set to true if ReadWriter already supports timeout with Read

	seq   Seq
	state SyncState
	lock  sync.RWMutex

	syncTimer <-chan time.Time
	parser    Parser
}

// NewLink creates a Link over a byte stream.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{
		ReadWriter: rw,
		Timeout:    100 * time.Millisecond,
		seq:        NewSeq(),
	}
}

// State gets the link state.
func (l *Link) State() SyncState {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.state
}

// Send sends a frame.
func (l *Link) Send(frm *Frame) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if !l.state.IsReady() {
		return ErrNotReady
	}
	frm.Seq = l.seq
	if _, err := frm.WriteTo(l.ReadWriter); err != nil {
		return err
	}
	l.seq = l.seq.Next()
	return nil
}

// Run processes the link in the background.
func (l *Link) Run(ctx context.Context) error {
	err := l.applyParseResult(ctx, l.parser.Reset())
	if err != nil {
		return err
	}

	if l.ReadTimeout {
		buf := make([]byte, 1)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.syncTimer:
				if err = l.applyParseResult(ctx, l.parser.Timeout()); err != nil {
					return err
				}
			default:
				n, err := l.ReadWriter.Read(buf)
				if err != nil {
					if os.IsTimeout(err) {
						err = l.applyParseResult(ctx, l.parser.Timeout())
					}
				} else if n == 0 {
					err = l.applyParseResult(ctx, l.parser.Timeout())
				} else {
					err = l.applyParseResult(ctx, l.parser.Parse(buf[0]))
				}
				if err != nil {
					return err
				}
			}
		}
	}

	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			if err = l.applyParseResult(ctx, l.parser.Parse(b)); err != nil {
				return err
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-l.syncTimer:
			if err = l.applyParseResult(ctx, l.parser.Timeout()); err != nil {
				return err
			}
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, err := l.ReadWriter.Read(buf)
			if err != nil {
				errCh <- err
				return
			}
			byteCh <- buf[0]
		}
	}
}

func (l *Link) applyParseResult(ctx context.Context, pr ParseResult) (err error) {
	var notifier StateNotifier
	l.lock.Lock()
	if l.state != pr.State {
		l.state = pr.State
		notifier = l.Notifier
	}
	if pr.Sync != 0 {
		_, err = l.ReadWriter.Write([]byte{pr.Sync, byte(l.seq)})
	}
	l.lock.Unlock()
	if err != nil {
		return
	}

	if l.ReadTimeout {
		if pr.Sync == syncREQ {
			l.syncTimer = time.After(l.Timeout)
		} else {
			l.syncTimer = nil
		}
	} else {
		switch pr.WhatAboutTimer() {
		case TimerRestart:
			l.syncTimer = time.After(l.Timeout)
		case TimerStop:
			l.syncTimer = nil
		}
	}

	if notifier != nil {
		notifier.StateChanged(ctx, pr.State)
	}
	if pr.Frame != nil {
		if h := l.Handler; h != nil {
			h.HandleFrame(ctx, pr.Frame)
		}
	}
	return
}
