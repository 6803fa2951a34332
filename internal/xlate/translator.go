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
	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/routererr"
	"github.com/hollowgate/umpbridge/internal/ump"
)

// Mode selects how channel-voice translation resolves ambiguous
// options such as the default Group.
type Mode uint8

const (
	ModeDefault Mode = iota
	ModeMPE
	ModeCustom
)

// Options configures a Translator.
type Options struct {
	Mode          Mode
	DefaultGroup  uint8
	PreserveTiming bool
}

// Translator converts between MIDI 1.0 messages and UMP packets. The
// conversion functions themselves are pure; Translator only carries
// configuration (default Group/mode) plus the in-flight SysEx7
// reassembly state tracked in state.go.
type Translator struct {
	opts   Options
	sysex  sysexStreams
}

// New constructs a Translator with the given options.
func New(opts Options) *Translator {
	return &Translator{opts: opts, sysex: newSysexStreams()}
}

// SetDefaultGroup updates the Group stamped onto outgoing UMP packets
// by Translate1To2. Not safe for concurrent use with Translate1To2;
// callers that share a Translator across goroutines (as the router
// does, from its single dispatcher goroutine) must serialize the two.
func (t *Translator) SetDefaultGroup(group uint8) {
	t.opts.DefaultGroup = group
}

// Translate1To2 converts a single MIDI 1.0 message into zero or more
// UMP packets. System Exclusive may fragment into multiple packets;
// every other message class produces exactly one packet, or
// ErrNotSupported if no mapping exists.
func (t *Translator) Translate1To2(msg midi1.Message) ([]ump.Packet, error) {
	group := t.opts.DefaultGroup

	switch msg.Class {
	case midi1.ClassChannelVoice:
		return t.translateChannelVoice1To2(msg, group)
	case midi1.ClassSystemCommon:
		p, err := systemPacket(group, msg.Status, msg.Data, msg.DataLen)
		if err != nil {
			return nil, err
		}
		return []ump.Packet{p}, nil
	case midi1.ClassRealTime:
		p, err := systemPacket(group, msg.Status, [2]byte{}, 0)
		if err != nil {
			return nil, err
		}
		return []ump.Packet{p}, nil
	case midi1.ClassSystemExclusive:
		return t.fragmentSysEx(group, msg.SysEx), nil
	default:
		return nil, routererr.ErrNotSupported
	}
}

// systemPacket maps a MIDI 1.0 System Common or Real-Time message onto
// a single-word MT=0x1 (System) UMP packet: status byte in bits 23-16,
// up to two data bytes in bits 15-8 and 7-0.
func systemPacket(group uint8, status byte, data [2]byte, dataLen uint8) (ump.Packet, error) {
	if group > 15 {
		return ump.Packet{}, routererr.ErrInvalidArgument
	}
	w0 := uint32(ump.MTSystem)<<28 | uint32(group)<<24 | uint32(status)<<16
	if dataLen > 0 {
		w0 |= uint32(data[0]) << 8
	}
	if dataLen > 1 {
		w0 |= uint32(data[1])
	}
	return ump.Packet{Type: ump.MTSystem, Group: group, NumWords: 1, Words: [4]uint32{w0}}, nil
}

func (t *Translator) translateChannelVoice1To2(msg midi1.Message, group uint8) ([]ump.Packet, error) {
	ch := msg.Channel
	switch msg.Status & 0xF0 {
	case 0x80:
		velocity := Upscale7To16(msg.Data[1])
		p, err := ump.BuildNoteOff(group, ch, msg.Data[0], velocity, 0, 0)
		return single(p, err)
	case 0x90:
		velocity := Upscale7To16(msg.Data[1])
		p, err := ump.BuildNoteOn(group, ch, msg.Data[0], velocity, 0, 0)
		return single(p, err)
	case 0xA0:
		value := upscaleTo32(msg.Data[1])
		p, err := ump.BuildPolyPressure(group, ch, msg.Data[0], value)
		return single(p, err)
	case 0xB0:
		value := upscaleTo32(msg.Data[1])
		p, err := ump.BuildControlChange(group, ch, msg.Data[0], value)
		return single(p, err)
	case 0xC0:
		p, err := ump.BuildProgramChange(group, ch, msg.Data[0], false, 0, 0)
		return single(p, err)
	case 0xD0:
		value := upscaleTo32(msg.Data[0])
		p, err := ump.BuildChannelPressure(group, ch, value)
		return single(p, err)
	case 0xE0:
		v14 := uint16(msg.Data[0]) | uint16(msg.Data[1])<<7
		p, err := ump.BuildPitchBend(group, ch, Upscale14To32(v14))
		return single(p, err)
	default:
		return nil, routererr.ErrNotSupported
	}
}

func upscaleTo32(v7 uint8) uint32 {
	v16 := Upscale7To16(v7)
	// Reuse the 7->16 law's output as the high word of a full-range
	// value: the low 16 bits mirror the high 16, which keeps 0 and max
	// exact without a second table. The center is returned directly,
	// since mirroring would put 0x8000 in its low half.
	if v7 == 64 {
		return 0x80000000
	}
	return uint32(v16)<<16 | uint32(v16)
}

func single(p ump.Packet, err error) ([]ump.Packet, error) {
	if err != nil {
		return nil, err
	}
	return []ump.Packet{p}, nil
}

// Translate2To1 converts a single UMP packet into a MIDI 1.0 message.
// MIDI 2.0 Channel Voice messages with no MIDI 1.0 equivalent (per-note
// pitch bend, per-note controllers, registered/assignable controllers)
// return ErrNotSupported, as do all packets other than System and MIDI
// 2.0 Channel Voice, SysEx7 included (see ReassembleSysEx7).
func (t *Translator) Translate2To1(p ump.Packet) (midi1.Message, error) {
	switch p.Type {
	case ump.MTSystem:
		return systemMessage(p)
	case ump.MTMIDI2ChannelVoice:
		return translateChannelVoice2To1(p)
	default:
		return midi1.Message{}, routererr.ErrNotSupported
	}
}

func systemMessage(p ump.Packet) (midi1.Message, error) {
	if p.NumWords < 1 {
		return midi1.Message{}, routererr.ErrInvalidArgument
	}
	w0 := p.Words[0]
	status := byte((w0 >> 16) & 0xFF)
	class := midi1.ClassSystemCommon
	if midi1.IsRealTime(status) {
		class = midi1.ClassRealTime
	}
	return midi1.Message{
		Class:  class,
		Status: status,
		Data:   [2]byte{byte((w0 >> 8) & 0xFF), byte(w0 & 0xFF)},
	}, nil
}

func translateChannelVoice2To1(p ump.Packet) (midi1.Message, error) {
	status, channel, byte2, _, ok := ump.ChannelVoiceFields(p)
	if !ok {
		return midi1.Message{}, routererr.ErrInvalidArgument
	}

	switch status {
	case ump.StatusNoteOff, ump.StatusNoteOn:
		_, _, note, velocity16, _, _, ok := ump.NoteFields(p)
		if !ok {
			return midi1.Message{}, routererr.ErrInvalidArgument
		}
		statusByte := byte(0x80)
		if status == ump.StatusNoteOn {
			statusByte = 0x90
		}
		return midi1.Message{
			Class:   midi1.ClassChannelVoice,
			Status:  statusByte | channel,
			Channel: channel,
			Data:    [2]byte{note, Downscale16To7(velocity16)},
			DataLen: 2,
		}, nil
	case ump.StatusPolyPressure:
		v7 := Downscale16To7(uint16(p.Words[1] >> 16))
		return midi1.Message{Class: midi1.ClassChannelVoice, Status: 0xA0 | channel, Channel: channel, Data: [2]byte{byte2, v7}, DataLen: 2}, nil
	case ump.StatusControlChange:
		v7 := Downscale16To7(uint16(p.Words[1] >> 16))
		return midi1.Message{Class: midi1.ClassChannelVoice, Status: 0xB0 | channel, Channel: channel, Data: [2]byte{byte2, v7}, DataLen: 2}, nil
	case ump.StatusProgramChange:
		program := byte2
		return midi1.Message{Class: midi1.ClassChannelVoice, Status: 0xC0 | channel, Channel: channel, Data: [2]byte{program, 0}, DataLen: 1}, nil
	case ump.StatusChannelPressure:
		v7 := Downscale16To7(uint16(p.Words[1] >> 16))
		return midi1.Message{Class: midi1.ClassChannelVoice, Status: 0xD0 | channel, Channel: channel, Data: [2]byte{v7, 0}, DataLen: 1}, nil
	case ump.StatusPitchBend:
		v14 := Downscale32To14(p.Words[1])
		return midi1.Message{
			Class:   midi1.ClassChannelVoice,
			Status:  0xE0 | channel,
			Channel: channel,
			Data:    [2]byte{byte(v14 & 0x7F), byte((v14 >> 7) & 0x7F)},
			DataLen: 2,
		}, nil
	default:
		// Per-note pitch bend, per-note controllers, registered/assignable
		// controllers, relative controllers: no MIDI 1.0 equivalent.
		return midi1.Message{}, routererr.ErrNotSupported
	}
}
