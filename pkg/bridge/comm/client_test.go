package comm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type chanReadWriter struct {
	readCh  <-chan byte
	writeCh chan byte
}

func (c *chanReadWriter) Read(p []byte) (int, error) {
	p[0] = <-c.readCh
	return 1, nil
}

func (c *chanReadWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		c.writeCh <- b
	}
	return len(p), nil
}

// clientTestEnv choreographs the byte exchange with the client: each
// step is a closure, run sequentially; parallel groups steps that
// block on each other.
type clientTestEnv struct {
	t        *testing.T
	readCh   chan byte
	writeCh  chan byte
	client   *Client
	commands []*Command
}

func newClientTestEnv(t *testing.T) *clientTestEnv {
	env := &clientTestEnv{
		t:       t,
		readCh:  make(chan byte, 1),
		writeCh: make(chan byte, 1),
	}
	link := NewLink(&chanReadWriter{readCh: env.readCh, writeCh: env.writeCh})
	link.seq = Seq(1)
	link.ReadTimeout = true
	env.client = NewClient(link)
	return env
}

func (e *clientTestEnv) run(steps ...func()) {
	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	go e.client.Run(ctx)
	for _, step := range steps {
		step()
	}
}

func (e *clientTestEnv) sequential(steps ...func()) func() {
	return func() {
		for _, step := range steps {
			step()
		}
	}
}

func (e *clientTestEnv) parallel(steps ...func()) func() {
	return func() {
		var wg sync.WaitGroup
		wg.Add(len(steps))
		for _, step := range steps {
			go func(step func()) {
				defer wg.Done()
				step()
			}(step)
		}
		wg.Wait()
	}
}

func (e *clientTestEnv) expect(bs ...byte) func() {
	return func() {
		for i, b := range bs {
			require.Equalf(e.t, b, <-e.writeCh, "sent byte[%d] mismatch", i)
		}
	}
}

func (e *clientTestEnv) inject(bs ...byte) func() {
	return func() {
		for _, b := range bs {
			e.readCh <- b
		}
	}
}

func (e *clientTestEnv) stateChange(states ...SyncState) func() {
	return func() {
		for i, state := range states {
			require.Equalf(e.t, state, <-e.client.StateChan(), "state[%d] mismatch", i)
		}
	}
}

func (e *clientTestEnv) clientDo(code byte, data ...byte) func() {
	return func() {
		e.commands = append(e.commands, e.client.Do(&Frame{Code: code, Data: data}))
	}
}

func (e *clientTestEnv) nextResult() (r Result) {
	require.NotEmpty(e.t, e.commands)
	cmd := e.commands[0]
	e.commands = e.commands[1:]
	select {
	case r = <-cmd.ResultChan():
	case <-time.After(500 * time.Millisecond):
		e.t.Fatal("result timeout")
	}
	return
}

func (e *clientTestEnv) clientResult(code byte, data ...byte) func() {
	return func() {
		r := e.nextResult()
		require.NoError(e.t, r.Err)
		require.Equal(e.t, code, r.Code)
		if len(data) == 0 {
			require.Empty(e.t, r.Data)
		} else {
			require.Equal(e.t, data, r.Data)
		}
	}
}

func (e *clientTestEnv) clientResultErr(err error) func() {
	return func() {
		require.Equal(e.t, err, e.nextResult().Err)
	}
}

func (e *clientTestEnv) clientEvent(code byte, data ...byte) func() {
	return func() {
		select {
		case frm := <-e.client.EventChan():
			require.Equal(e.t, code, frm.Code)
			if len(data) == 0 {
				require.Empty(e.t, frm.Data)
			} else {
				require.Equal(e.t, data, frm.Data)
			}
		case <-time.After(500 * time.Millisecond):
			e.t.Fatal("event timeout")
		}
	}
}

func TestClient(t *testing.T) {
	testCases := []struct {
		name  string
		logic func(*clientTestEnv)
	}{
		{
			"simple command",
			func(env *clientTestEnv) {
				env.run(
					env.expect(syncREQ, 1),
					env.parallel(
						env.inject(syncACK, 1),
						env.stateChange(SyncStateReceiving, SyncStateReady),
					),
					env.parallel(
						env.clientDo(2),
						env.expect(1, 0x02, 0xfd),
					),
					env.parallel(
						env.inject(1, 0x10, 1, 0xee),
						env.stateChange(SyncStateReady|SyncStateReceiving, SyncStateReady),
						env.clientResult(0),
					),
				)
			},
		},
		{
			"no reply",
			func(env *clientTestEnv) {
				env.run(
					env.expect(syncREQ, 1),
					env.parallel(
						env.inject(syncACK, 1),
						env.stateChange(SyncStateReceiving, SyncStateReady),
					),
					env.parallel(
						env.sequential(
							env.clientDo(2),
							env.clientDo(4),
						),
						env.expect(1, 0x02, 0xfd, 2, 0x04, 0xfa),
					),
					env.parallel(
						env.inject(1, 0x22, 2, 3, 0xd8),
						env.stateChange(SyncStateReady|SyncStateReceiving, SyncStateReady),
					),
					env.clientResultErr(ErrNoReply),
					env.clientResult(1, 3),
				)
			},
		},
		{
			"command error",
			func(env *clientTestEnv) {
				env.run(
					env.expect(syncREQ, 1),
					env.parallel(
						env.inject(syncACK, 1),
						env.stateChange(SyncStateReceiving, SyncStateReady),
					),
					env.parallel(
						env.clientDo(2),
						env.expect(1, 0x02, 0xfd),
					),
					env.parallel(
						env.inject(1, 0x13, 1, 0xeb),
						env.stateChange(SyncStateReady|SyncStateReceiving, SyncStateReady),
						env.clientResultErr(&CommandError{Status: 1}),
					),
				)
			},
		},
		{
			"event",
			func(env *clientTestEnv) {
				env.run(
					env.expect(syncREQ, 1),
					env.parallel(
						env.inject(syncACK, 1),
						env.stateChange(SyncStateReceiving, SyncStateReady),
					),
					env.parallel(
						env.inject(1, 0x91, 2, 0x6c),
						env.stateChange(SyncStateReady|SyncStateReceiving, SyncStateReady),
					),
					env.clientEvent(0x81, 2),
				)
			},
		},
		{
			"event and command",
			func(env *clientTestEnv) {
				env.run(
					env.expect(syncREQ, 1),
					env.parallel(
						env.inject(syncACK, 1),
						env.stateChange(SyncStateReceiving, SyncStateReady),
					),
					env.parallel(
						env.clientDo(2),
						env.expect(1, 0x02, 0xfd),
					),
					env.parallel(
						env.inject(1, 0x91, 2, 0x6c),
						env.stateChange(SyncStateReady|SyncStateReceiving, SyncStateReady),
					),
					env.clientEvent(0x81, 2),
					env.parallel(
						env.inject(2, 0x14, 1, 0xe9),
						env.stateChange(SyncStateReady|SyncStateReceiving, SyncStateReady),
						env.clientResult(2),
					),
				)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newClientTestEnv(t)
			tc.logic(env)
		})
	}
}
