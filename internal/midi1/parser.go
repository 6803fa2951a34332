// SPDX-License-Identifier: AGPL-3.0-or-later
// umpbridge - A multi-transport MIDI router/bridge
// Copyright (C) 2026 umpbridge contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package midi1

type parseState uint8

const (
	stateIdle parseState = iota
	stateCollecting
	stateSysEx
)

// Parser decodes a MIDI 1.0 byte stream into complete Messages. It is
// strictly single-threaded per stream and holds no synchronization of
// its own; callers owning multiple streams need one Parser per stream.
//
// The SysEx buffer is caller-owned: Init stores the slice header only,
// never allocates, and never frees it. Passing a nil buffer disables
// SysEx capture (SysEx bytes are still parsed for framing, but dropped
// rather than captured).
type Parser struct {
	state parseState

	runningStatus byte // last channel-voice status byte; 0 when invalidated

	collectingStatus byte // status driving the in-progress collection
	collectingIsChan bool
	expected         uint8
	accIdx           uint8
	acc              [2]byte

	sysexBuf []byte
	sysexLen int

	ParseErrors  uint64
	MessageCount uint64
}

// Init (re)binds the parser to a caller-owned SysEx buffer. It does
// not reset other parser state; call Reset for that.
func (p *Parser) Init(sysexBuf []byte) {
	p.sysexBuf = sysexBuf
	p.sysexLen = 0
}

// Reset clears running status, the data accumulator, and SysEx mode.
// Statistics counters are preserved.
func (p *Parser) Reset() {
	p.state = stateIdle
	p.runningStatus = 0
	p.collectingStatus = 0
	p.collectingIsChan = false
	p.expected = 0
	p.accIdx = 0
	p.sysexLen = 0
}

// ParseByte feeds one byte to the parser. complete is true iff msg is
// a fully formed message produced by this byte; msg is the zero value
// otherwise. ParseByte never fails the stream: malformed input bumps
// ParseErrors and is dropped.
func (p *Parser) ParseByte(b byte) (msg Message, complete bool) {
	if IsRealTime(b) {
		// Real-time bytes never alter accumulator state or running status,
		// in any parser state, including mid-SysEx. The undefined 0xF9 and
		// 0xFD are dropped the same way.
		if _, ok := dataByteCount(b); !ok {
			p.ParseErrors++
			return Message{}, false
		}
		return Message{Class: ClassRealTime, Status: b}, true
	}

	if IsStatusByte(b) {
		return p.handleStatus(b)
	}

	// Data byte.
	switch p.state {
	case stateCollecting:
		return p.handleCollectingData(b)
	case stateSysEx:
		return p.handleSysExByte(b)
	default:
		// Idle + stray data byte with no running status: drop it.
		p.ParseErrors++
		return Message{}, false
	}
}

func (p *Parser) handleStatus(b byte) (msg Message, complete bool) {
	switch b {
	case 0xF0:
		p.state = stateSysEx
		p.sysexLen = 0
		p.runningStatus = 0
		return Message{}, false
	case 0xF7:
		if p.state == stateSysEx {
			p.state = stateIdle
			return Message{Class: ClassSystemExclusive, Status: 0xF0, SysEx: p.sysexBuf[:p.sysexLen]}, true
		}
		// EOX with no open SysEx: ignore.
		return Message{}, false
	}

	if p.state == stateSysEx {
		// Any non-real-time, non-0xF7 status while in SysEx terminates it
		// silently (no emission) and is reprocessed as a new status below.
		p.state = stateIdle
	}

	n, ok := dataByteCount(b)
	if !ok {
		p.ParseErrors++
		p.runningStatus = 0
		p.state = stateIdle
		return Message{}, false
	}

	if IsChannelMessage(b) {
		p.runningStatus = b
		p.collectingStatus = b
		p.collectingIsChan = true
	} else {
		p.runningStatus = 0
		p.collectingStatus = b
		p.collectingIsChan = false
	}
	p.expected = n
	p.accIdx = 0

	if n == 0 {
		p.state = stateIdle
		return p.finishMessage(), true
	}

	p.state = stateCollecting
	return Message{}, false
}

func (p *Parser) handleCollectingData(b byte) (msg Message, complete bool) {
	if p.accIdx >= p.expected {
		// Shouldn't happen (expected==0 never enters stateCollecting), guard anyway.
		p.accIdx = 0
	}
	p.acc[p.accIdx] = b
	p.accIdx++
	if p.accIdx < p.expected {
		return Message{}, false
	}

	out := p.finishMessage()
	p.accIdx = 0
	if p.collectingIsChan {
		// Running status: stay ready to accept more data bytes for the
		// same status without seeing it repeated on the wire.
		p.state = stateCollecting
	} else {
		p.state = stateIdle
	}
	return out, true
}

func (p *Parser) finishMessage() Message {
	p.MessageCount++
	class := ClassSystemCommon
	var channel uint8
	if p.collectingIsChan {
		class = ClassChannelVoice
		_, channel = StatusChannel(p.collectingStatus)
	}
	return Message{
		Class:   class,
		Status:  p.collectingStatus,
		Channel: channel,
		Data:    p.acc,
		DataLen: p.expected,
	}
}

func (p *Parser) handleSysExByte(b byte) (msg Message, complete bool) {
	if p.sysexBuf != nil && p.sysexLen < len(p.sysexBuf) {
		p.sysexBuf[p.sysexLen] = b
		p.sysexLen++
	} else if p.sysexBuf != nil {
		p.ParseErrors++
	}
	return Message{}, false
}
