package comm

// Parser parses bytes received from the peer.
type Parser struct {
	peerSeq Seq
	state   parseState
	frame   *Frame
	recvLen byte
	sum     byte
}

// SyncState indicates the state of communication.
type SyncState int

const (
	// SyncStateSyncing means the communication is not synchronized.
	SyncStateSyncing SyncState = 0
	// SyncStateReady means the communication is synchronized and ready for frames.
	SyncStateReady SyncState = 0x01
	// SyncStateReceiving means there's on-going communication for syncing or a frame.
	SyncStateReceiving SyncState = 0x02
)

// IsReady indicates if the communication is ready for frames.
func (s SyncState) IsReady() bool {
	return s&SyncStateReady != 0
}

// IsReceiving indicates if it's in the middle of syncing or receiving a frame.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// TimerAction defines what to do with the resync timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	Sync  byte
	State SyncState
	Frame *Frame
}

// WhatAboutTimer decides what to do with the resync timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.State.IsReceiving() || r.Sync == syncREQ {
		return TimerRestart
	}
	if r.State.IsReady() {
		return TimerStop
	}
	return TimerNoChange
}

type parseState int

const (
	stateSyncAck    parseState = iota // sync req sent, waiting for syncACK
	stateSyncReqSeq                   // waiting for sync seq after syncREQ
	stateSyncAckSeq                   // waiting for sync seq after syncACK
	stateSeq                          // waiting for frame seq
	stateAckSeq                       // recv ack in stateSeq, validate seq
	stateCode                         // waiting for frame code
	stateLen                          // waiting for extended frame length
	stateData                         // waiting for frame data
	stateSum                          // waiting for frame checksum
)

const (
	syncREQ byte = 0xff
	syncACK byte = 0xfe
)

// State gets the current sync state.
func (p *Parser) State() SyncState {
	if p.state == stateSyncAck {
		return SyncStateSyncing
	}
	if p.state == stateSeq {
		return SyncStateReady
	}
	if p.state > stateSeq {
		return SyncStateReady | SyncStateReceiving
	}
	return SyncStateSyncing | SyncStateReceiving
}

// Reset resets the internal state of parser.
func (p *Parser) Reset() (pr ParseResult) {
	p.frame = nil
	pr.Sync, pr.Frame = p.resync()
	pr.State = p.State()
	return
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Sync, pr.Frame = p.parseByte(b)
	pr.State = p.State()
	return
}

// Timeout notifies the parser the inter-byte timer expired.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateSeq {
		pr.Sync, pr.Frame = p.resync()
	}
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (syncCmd byte, frm *Frame) {
	switch p.state {
	case stateSyncAck:
		switch b {
		case syncREQ:
			p.state = stateSyncReqSeq
		case syncACK:
			p.state = stateSyncAckSeq
		}
	case stateSyncReqSeq:
		if seq := Seq(b); seq.IsValid() {
			p.peerSeq, p.state = seq, stateSeq
			syncCmd = syncACK
			return
		}
		return p.resync()
	case stateSyncAckSeq:
		if seq := Seq(b); seq.IsValid() {
			p.peerSeq, p.state = seq, stateSeq
			return
		}
		return p.resync()
	case stateSeq:
		if b == syncREQ {
			p.state = stateSyncReqSeq
			return
		}
		if b == syncACK {
			p.state = stateAckSeq
			return
		}
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.frame = &Frame{Seq: p.peerSeq}
		p.sum = b
		p.peerSeq = p.peerSeq.Next()
		p.state = stateCode
	case stateAckSeq:
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.state = stateSeq
	case stateCode:
		p.sum += b
		p.frame.Code = b & 0x8f
		switch dataLen := (b >> 4) & 7; dataLen {
		case 0:
			p.state = stateSum
		case 7:
			p.state = stateLen
		default:
			p.frame.Data, p.recvLen = make([]byte, dataLen), 0
			p.state = stateData
		}
	case stateLen:
		if b >= 0x80 {
			return p.resync()
		}
		p.sum += b
		if b == 0 {
			p.state = stateSum
			return
		}
		p.frame.Data, p.recvLen = make([]byte, b), 0
		p.state = stateData
	case stateData:
		p.sum += b
		p.frame.Data[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= byte(len(p.frame.Data)) {
			p.state = stateSum
		}
	case stateSum:
		if p.sum+b != 0 {
			// damaged frame, drop it and force a resync
			return p.resync()
		}
		return p.frameReady()
	}
	return
}

func (p *Parser) resync() (byte, *Frame) {
	p.state = stateSyncAck
	return syncREQ, nil
}

func (p *Parser) frameReady() (syncCmd byte, frm *Frame) {
	p.state = stateSeq
	frm, p.frame = p.frame, nil
	return
}
