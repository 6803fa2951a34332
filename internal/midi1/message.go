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

// Package midi1 implements a stateful MIDI 1.0 byte-stream parser:
// running status, real-time interleaving, and System Exclusive framing
// over a caller-owned buffer.
package midi1

// Class identifies the broad category a MIDI 1.0 message falls into.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassChannelVoice
	ClassSystemCommon
	ClassRealTime
	ClassSystemExclusive
)

// Message is the single in-memory shape used for every MIDI 1.0
// message the parser emits: a tagged variant via Class, with Data
// holding up to two 7-bit payload bytes for Channel Voice / System
// Common messages and SysEx holding a slice into the caller-owned
// SysEx buffer for System Exclusive messages.
type Message struct {
	Class   Class
	Status  byte
	Channel uint8
	Data    [2]byte
	DataLen uint8
	SysEx   []byte
}

// Serialize renders msg back to the raw MIDI 1.0 bytes a transport
// writes to the wire: a full status byte followed by its data bytes
// (no running-status compaction — each call is self-contained, which
// every transport in this router needs since packets may arrive out
// of their original stream order after translation).
func Serialize(msg Message) []byte {
	if msg.Class == ClassSystemExclusive {
		out := make([]byte, 0, len(msg.SysEx)+2)
		out = append(out, 0xF0)
		out = append(out, msg.SysEx...)
		out = append(out, 0xF7)
		return out
	}
	out := make([]byte, 0, 3)
	out = append(out, msg.Status)
	out = append(out, msg.Data[:msg.DataLen]...)
	return out
}

// IsChannelMessage reports whether status addresses a specific channel.
func IsChannelMessage(status byte) bool {
	return status < 0xF0
}

// StatusChannel splits a channel-voice status byte into its upper
// nibble (message class) and channel (0-15).
func StatusChannel(status byte) (upper byte, channel uint8) {
	return status & 0xF0, status & 0x0F
}

// IsRealTime reports whether b is a MIDI 1.0 System Real-Time byte (0xF8-0xFF).
func IsRealTime(b byte) bool {
	return b >= 0xF8
}

// IsStatusByte reports whether b has its MSB set (a status byte, not a data byte).
func IsStatusByte(b byte) bool {
	return b&0x80 != 0
}

// dataByteCount returns the number of data bytes a non-SysEx status
// byte expects. ok is false for 0xF0 (variable length, handled
// separately by the parser) and for undefined statuses, which the
// caller should drop.
func dataByteCount(status byte) (n uint8, ok bool) {
	switch {
	case status >= 0x80 && status <= 0xBF:
		return 2, true
	case status >= 0xC0 && status <= 0xDF:
		return 1, true
	case status >= 0xE0 && status <= 0xEF:
		return 2, true
	case status == 0xF0:
		return 0, false
	case status == 0xF1, status == 0xF3:
		return 1, true
	case status == 0xF2:
		return 2, true
	case status == 0xF6, status == 0xF7:
		return 0, true
	case status == 0xF9, status == 0xFD:
		// Undefined statuses in the real-time range.
		return 0, false
	case status >= 0xF8:
		return 0, true
	default:
		// 0xF4, 0xF5: undefined.
		return 0, false
	}
}
