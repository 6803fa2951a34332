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

package ump

import "github.com/hollowgate/umpbridge/internal/routererr"

// MIDI 2.0 Channel Voice status nibbles (word 0 bits 23-20), identical
// numbering to their MIDI 1.0 counterparts.
const (
	StatusNoteOff         = 0x8
	StatusNoteOn          = 0x9
	StatusPolyPressure    = 0xA
	StatusControlChange   = 0xB
	StatusProgramChange   = 0xC
	StatusChannelPressure = 0xD
	StatusPitchBend       = 0xE
)

func word0(group, status, channel uint8, byte2, byte3 uint8) uint32 {
	return uint32(MTMIDI2ChannelVoice)<<28 |
		uint32(group&0xF)<<24 |
		uint32(status&0xF)<<20 |
		uint32(channel&0xF)<<16 |
		uint32(byte2)<<8 |
		uint32(byte3)
}

func checkGroupChannel(group, channel uint8) error {
	if group > 15 || channel > 15 {
		return routererr.ErrInvalidArgument
	}
	return nil
}

// buildNote constructs a Note On/Off packet. Word 0 byte 2 holds the
// note number and byte 3 the Attribute Type; word 1 is
// [Velocity:16][Attribute Data:16] exactly, per the MIDI Association
// UMP spec (the Attribute Type field lives in word 0, not word 1).
func buildNote(status, group, channel, note uint8, velocity16 uint16, attrType uint8, attrData uint16) (Packet, error) {
	if err := checkGroupChannel(group, channel); err != nil {
		return Packet{}, err
	}
	if note > 127 {
		return Packet{}, routererr.ErrInvalidArgument
	}
	p := Packet{Type: MTMIDI2ChannelVoice, Group: group, NumWords: 2}
	p.Words[0] = word0(group, status, channel, note, attrType)
	p.Words[1] = uint32(velocity16)<<16 | uint32(attrData)
	return p, nil
}

// BuildNoteOn builds a MIDI 2.0 Note On packet.
func BuildNoteOn(group, channel, note uint8, velocity16 uint16, attrType uint8, attrData uint16) (Packet, error) {
	return buildNote(StatusNoteOn, group, channel, note, velocity16, attrType, attrData)
}

// BuildNoteOff builds a MIDI 2.0 Note Off packet.
func BuildNoteOff(group, channel, note uint8, velocity16 uint16, attrType uint8, attrData uint16) (Packet, error) {
	return buildNote(StatusNoteOff, group, channel, note, velocity16, attrType, attrData)
}

// BuildPolyPressure builds a MIDI 2.0 Polyphonic Key Pressure packet.
// Word 1 carries the full 32-bit pressure value.
func BuildPolyPressure(group, channel, note uint8, value32 uint32) (Packet, error) {
	if err := checkGroupChannel(group, channel); err != nil {
		return Packet{}, err
	}
	if note > 127 {
		return Packet{}, routererr.ErrInvalidArgument
	}
	p := Packet{Type: MTMIDI2ChannelVoice, Group: group, NumWords: 2}
	p.Words[0] = word0(group, StatusPolyPressure, channel, note, 0)
	p.Words[1] = value32
	return p, nil
}

// BuildControlChange builds a MIDI 2.0 Control Change packet. Word 0
// byte 2 holds the controller index; word 1 carries the full 32-bit value.
func BuildControlChange(group, channel, controller uint8, value32 uint32) (Packet, error) {
	if err := checkGroupChannel(group, channel); err != nil {
		return Packet{}, err
	}
	if controller > 127 {
		return Packet{}, routererr.ErrInvalidArgument
	}
	p := Packet{Type: MTMIDI2ChannelVoice, Group: group, NumWords: 2}
	p.Words[0] = word0(group, StatusControlChange, channel, controller, 0)
	p.Words[1] = value32
	return p, nil
}

// BuildProgramChange builds a MIDI 2.0 Program Change packet. Word 0
// byte 2 holds the program number and bit 0 of byte 3 (bits 7..0) is
// the Bank-Valid flag; word 1 high 16 bits hold [BankMSB:8|BankLSB:8],
// low 16 bits are reserved.
func BuildProgramChange(group, channel, program uint8, bankValid bool, bankMSB, bankLSB uint8) (Packet, error) {
	if err := checkGroupChannel(group, channel); err != nil {
		return Packet{}, err
	}
	if program > 127 {
		return Packet{}, routererr.ErrInvalidArgument
	}
	var optionFlags uint8
	if bankValid {
		optionFlags = 0x01
	}
	p := Packet{Type: MTMIDI2ChannelVoice, Group: group, NumWords: 2}
	p.Words[0] = word0(group, StatusProgramChange, channel, program, optionFlags)
	p.Words[1] = uint32(bankMSB)<<24 | uint32(bankLSB)<<16
	return p, nil
}

// BuildChannelPressure builds a MIDI 2.0 Channel Pressure packet. Word
// 1 carries the full 32-bit pressure value.
func BuildChannelPressure(group, channel uint8, value32 uint32) (Packet, error) {
	if err := checkGroupChannel(group, channel); err != nil {
		return Packet{}, err
	}
	p := Packet{Type: MTMIDI2ChannelVoice, Group: group, NumWords: 2}
	p.Words[0] = word0(group, StatusChannelPressure, channel, 0, 0)
	p.Words[1] = value32
	return p, nil
}

// BuildPitchBend builds a MIDI 2.0 Pitch Bend packet. Word 1 carries
// the full unsigned 32-bit value; center is 0x80000000.
func BuildPitchBend(group, channel uint8, value32 uint32) (Packet, error) {
	if err := checkGroupChannel(group, channel); err != nil {
		return Packet{}, err
	}
	p := Packet{Type: MTMIDI2ChannelVoice, Group: group, NumWords: 2}
	p.Words[0] = word0(group, StatusPitchBend, channel, 0, 0)
	p.Words[1] = value32
	return p, nil
}

// ChannelVoiceFields extracts the fields common to all MIDI 2.0
// Channel Voice packets: status nibble, channel, and the two
// word-0 payload bytes (their meaning depends on status).
func ChannelVoiceFields(p Packet) (status, channel, byte2, byte3 uint8, ok bool) {
	if p.Type != MTMIDI2ChannelVoice || p.NumWords < 1 {
		return 0, 0, 0, 0, false
	}
	w0 := p.Words[0]
	status = uint8((w0 >> 20) & 0xF)
	channel = uint8((w0 >> 16) & 0xF)
	byte2 = uint8((w0 >> 8) & 0xFF)
	byte3 = uint8(w0 & 0xFF)
	return status, channel, byte2, byte3, true
}

// NoteFields extracts {group, channel, note, velocity, attrType,
// attrData} from a decoded Note On/Off packet.
func NoteFields(p Packet) (group, channel, note uint8, velocity uint16, attrType uint8, attrData uint16, ok bool) {
	status, channel, note, attrType, ok := ChannelVoiceFields(p)
	if !ok || (status != StatusNoteOn && status != StatusNoteOff) {
		return 0, 0, 0, 0, 0, 0, false
	}
	if p.NumWords < 2 {
		return 0, 0, 0, 0, 0, 0, false
	}
	w1 := p.Words[1]
	velocity = uint16(w1 >> 16)
	attrData = uint16(w1)
	return p.Group, channel, note, velocity, attrType, attrData, true
}
