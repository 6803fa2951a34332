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

package xlate

import (
	"sync"
	"time"

	"github.com/hollowgate/umpbridge/internal/ump"
)

// sysexStreams tracks reassembly state for MIDI 2.0 -> MIDI 1.0
// SysEx7 fragment sequences, keyed by an opaque stream identity the
// caller supplies (typically the source transport id). This mirrors
// the per-stream reaping shape of a DMR IPSC-style translator, adapted
// from call streams to SysEx fragment trains.
type sysexStreams struct {
	mu      sync.Mutex
	inbound map[uint32]*sysexInbound
}

type sysexInbound struct {
	buf          []byte
	lastActivity time.Time
}

func newSysexStreams() sysexStreams {
	return sysexStreams{inbound: make(map[uint32]*sysexInbound)}
}

// fragmentSysEx splits a SysEx payload into MaxSysEx7Bytes-sized
// Data-64 packets, marking the first/middle/last packets per the UMP
// spec's 4-valued Status field. A payload that fits in one packet is
// marked Complete rather than Start+End.
func (t *Translator) fragmentSysEx(group uint8, payload []byte) []ump.Packet {
	if len(payload) == 0 {
		p, err := ump.BuildSysEx7(group, ump.SysExComplete, nil)
		if err != nil {
			return nil
		}
		return []ump.Packet{p}
	}

	var packets []ump.Packet
	for offset := 0; offset < len(payload); offset += ump.MaxSysEx7Bytes {
		end := offset + ump.MaxSysEx7Bytes
		if end > len(payload) {
			end = len(payload)
		}
		status := ump.SysExContinue
		switch {
		case offset == 0 && end == len(payload):
			status = ump.SysExComplete
		case offset == 0:
			status = ump.SysExStart
		case end == len(payload):
			status = ump.SysExEnd
		}
		p, err := ump.BuildSysEx7(group, status, payload[offset:end])
		if err != nil {
			continue
		}
		packets = append(packets, p)
	}
	return packets
}

// ReassembleSysEx7 feeds one SysEx7 packet belonging to streamID into
// the reassembly buffer. It returns the complete payload and true once
// an End (or a standalone Complete) packet closes the sequence.
func (t *Translator) ReassembleSysEx7(streamID uint32, p ump.Packet) ([]byte, bool) {
	status, data, ok := ump.ExtractSysEx7(p)
	if !ok {
		return nil, false
	}

	t.sysex.mu.Lock()
	defer t.sysex.mu.Unlock()

	switch status {
	case ump.SysExComplete:
		delete(t.sysex.inbound, streamID)
		return data, true
	case ump.SysExStart:
		t.sysex.inbound[streamID] = &sysexInbound{buf: append([]byte(nil), data...), lastActivity: time.Now()}
		return nil, false
	case ump.SysExContinue:
		in, exists := t.sysex.inbound[streamID]
		if !exists {
			return nil, false
		}
		in.buf = append(in.buf, data...)
		in.lastActivity = time.Now()
		return nil, false
	case ump.SysExEnd:
		in, exists := t.sysex.inbound[streamID]
		if !exists {
			return append([]byte(nil), data...), true
		}
		in.buf = append(in.buf, data...)
		out := in.buf
		delete(t.sysex.inbound, streamID)
		return out, true
	default:
		return nil, false
	}
}

// CleanupStaleStreams removes any in-flight SysEx7 reassembly state
// that has not seen a fragment within maxAge, preventing unbounded
// growth when an End packet is lost.
func (t *Translator) CleanupStaleStreams(maxAge time.Duration) int {
	t.sysex.mu.Lock()
	defer t.sysex.mu.Unlock()

	now := time.Now()
	cleaned := 0
	for id, in := range t.sysex.inbound {
		if now.Sub(in.lastActivity) > maxAge {
			delete(t.sysex.inbound, id)
			cleaned++
		}
	}
	return cleaned
}
