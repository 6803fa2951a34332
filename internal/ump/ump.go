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

// Package ump implements the Universal MIDI Packet codec: Message-Type
// keyed size classification, decode/encode of raw 32-bit word streams,
// and builders/extractors for MIDI 2.0 Channel Voice messages.
//
// Every function here is a pure function of its inputs and holds no
// mutable state, per the concurrency model: the codec is safe to call
// from any number of goroutines concurrently without synchronization.
package ump

import "github.com/hollowgate/umpbridge/internal/routererr"

// MessageType is the top nibble of a UMP's first word.
type MessageType uint8

const (
	MTUtility           MessageType = 0x0
	MTSystem            MessageType = 0x1
	MTMIDI1ChannelVoice MessageType = 0x2
	MTData64            MessageType = 0x3 // SysEx7
	MTMIDI2ChannelVoice MessageType = 0x4
	MTData128           MessageType = 0x5 // SysEx8 / Mixed Data Set
	MTFlexData          MessageType = 0xD
	MTUMPStream         MessageType = 0xF
)

// Packet is an ordered sequence of 1-4 32-bit words, with MessageType
// and Group denormalized from word 0 for convenient access.
type Packet struct {
	Type     MessageType
	Group    uint8
	NumWords uint8
	Words    [4]uint32
}

// sizeForType implements the Universal MIDI Packet's MT-keyed word
// count table. Every MT nibble 0x0-0xF has a defined size; none
// return "cannot determine".
func sizeForType(mt MessageType) uint8 {
	switch mt {
	case 0x0, 0x1, 0x2, 0x6, 0x7:
		return 1
	case 0x3, 0x4, 0x8, 0x9, 0xA:
		return 2
	case 0xB, 0xC:
		return 3
	case 0x5, 0xD, 0xE, 0xF:
		return 4
	default:
		return 0
	}
}

// Decode reads words[0] to derive the packet size, copies exactly that
// many words, and sets Type/Group from word 0 bits 31..24. It fails
// only if the derived size is 0 (unreachable for the defined 0x0-0xF
// range, but guarded since MessageType is not restricted at the type
// level) or if words is shorter than the derived size.
func Decode(words []uint32) (Packet, error) {
	if len(words) == 0 {
		return Packet{}, routererr.ErrInvalidArgument
	}
	mt := MessageType((words[0] >> 28) & 0xF)
	n := sizeForType(mt)
	if n == 0 {
		return Packet{}, routererr.ErrUnsupportedMessageType
	}
	if len(words) < int(n) {
		return Packet{}, routererr.ErrInsufficientCapacity
	}
	var p Packet
	p.Type = mt
	p.Group = uint8((words[0] >> 24) & 0xF)
	p.NumWords = n
	copy(p.Words[:n], words[:n])
	return p, nil
}

// Encode writes packet.NumWords words into out. It fails with
// ErrInsufficientCapacity if out is shorter than that.
func Encode(p Packet, out []uint32) error {
	if len(out) < int(p.NumWords) {
		return routererr.ErrInsufficientCapacity
	}
	copy(out[:p.NumWords], p.Words[:p.NumWords])
	return nil
}

// IsValid checks structural validity: NumWords matches the MT's size
// table and Group is in range. It does not inspect message-specific
// subfields (note/controller/program ranges) — callers that built a
// packet through the builders in build.go already have those
// guarantees; IsValid is for packets arriving from the wire.
func IsValid(p Packet) bool {
	if p.Group > 15 {
		return false
	}
	return p.NumWords == sizeForType(p.Type)
}
