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

package ump_test

import (
	"testing"

	"github.com/hollowgate/umpbridge/internal/routererr"
	"github.com/hollowgate/umpbridge/internal/ump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSizeClassification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		mt   ump.MessageType
		want uint8
	}{
		{"utility", ump.MTUtility, 1},
		{"system", ump.MTSystem, 1},
		{"midi1 cv", ump.MTMIDI1ChannelVoice, 1},
		{"data64", ump.MTData64, 2},
		{"midi2 cv", ump.MTMIDI2ChannelVoice, 2},
		{"data128", ump.MTData128, 4},
		{"flex data", ump.MTFlexData, 4},
		{"ump stream", ump.MTUMPStream, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			words := make([]uint32, 4)
			words[0] = uint32(tt.mt) << 28
			p, err := ump.Decode(words)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.NumWords)
		})
	}
}

func TestDecodeGroupExtraction(t *testing.T) {
	t.Parallel()
	words := []uint32{uint32(ump.MTSystem)<<28 | 0x5<<24}
	p, err := ump.Decode(words)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), p.Group)
}

func TestDecodeInsufficientWords(t *testing.T) {
	t.Parallel()
	words := []uint32{uint32(ump.MTMIDI2ChannelVoice) << 28}
	_, err := ump.Decode(words)
	assert.Error(t, err)
}

func TestEncodeInsufficientCapacity(t *testing.T) {
	t.Parallel()
	p := ump.Packet{Type: ump.MTMIDI2ChannelVoice, NumWords: 2}
	err := ump.Encode(p, make([]uint32, 1))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	p, err := ump.BuildNoteOn(0, 3, 60, 32768, 0, 0)
	require.NoError(t, err)

	out := make([]uint32, 4)
	require.NoError(t, ump.Encode(p, out))

	decoded, err := ump.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestIsValidRejectsBadGroup(t *testing.T) {
	t.Parallel()
	p := ump.Packet{Type: ump.MTSystem, Group: 20, NumWords: 1}
	assert.False(t, ump.IsValid(p))
}

func TestIsValidRejectsWrongSize(t *testing.T) {
	t.Parallel()
	p := ump.Packet{Type: ump.MTMIDI2ChannelVoice, Group: 0, NumWords: 1}
	assert.False(t, ump.IsValid(p))
}

func TestBuildNoteOnRejectsBadArguments(t *testing.T) {
	t.Parallel()
	_, err := ump.BuildNoteOn(16, 0, 60, 0, 0, 0)
	assert.ErrorIs(t, err, routererr.ErrInvalidArgument)

	_, err = ump.BuildNoteOn(0, 16, 60, 0, 0, 0)
	assert.Error(t, err)

	_, err = ump.BuildNoteOn(0, 0, 200, 0, 0, 0)
	assert.Error(t, err)
}

func TestBuildAndExtractNoteOnRoundTrip(t *testing.T) {
	t.Parallel()
	// Testable property scenario 5: build_midi2_note_on(group=0,ch=0,
	// note=60,vel=32768,attr_type=0,attr_data=0) -> decode -> extracted
	// {group=0, channel=0, note=60, velocity=32768}.
	p, err := ump.BuildNoteOn(0, 0, 60, 32768, 0, 0)
	require.NoError(t, err)
	assert.True(t, ump.IsValid(p))

	group, channel, note, velocity, attrType, attrData, ok := ump.NoteFields(p)
	require.True(t, ok)
	assert.Equal(t, uint8(0), group)
	assert.Equal(t, uint8(0), channel)
	assert.Equal(t, uint8(60), note)
	assert.Equal(t, uint16(32768), velocity)
	assert.Equal(t, uint8(0), attrType)
	assert.Equal(t, uint16(0), attrData)
}

func TestNoteFieldsWithAttribute(t *testing.T) {
	t.Parallel()
	p, err := ump.BuildNoteOn(2, 9, 60, 40000, 0x05, 0xABCD)
	require.NoError(t, err)

	group, channel, note, velocity, attrType, attrData, ok := ump.NoteFields(p)
	require.True(t, ok)
	assert.Equal(t, uint8(2), group)
	assert.Equal(t, uint8(9), channel)
	assert.Equal(t, uint8(60), note)
	assert.Equal(t, uint16(40000), velocity)
	assert.Equal(t, uint8(0x05), attrType)
	assert.Equal(t, uint16(0xABCD), attrData)
}

func TestBuildControlChangeFullValue(t *testing.T) {
	t.Parallel()
	p, err := ump.BuildControlChange(0, 0, 7, 0xDEADBEEF)
	require.NoError(t, err)
	status, channel, controller, _, ok := ump.ChannelVoiceFields(p)
	require.True(t, ok)
	assert.Equal(t, uint8(ump.StatusControlChange), status)
	assert.Equal(t, uint8(0), channel)
	assert.Equal(t, uint8(7), controller)
	assert.Equal(t, uint32(0xDEADBEEF), p.Words[1])
}

func TestBuildProgramChangeBankFields(t *testing.T) {
	t.Parallel()
	p, err := ump.BuildProgramChange(0, 0, 42, true, 0x01, 0x02)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01)<<24|uint32(0x02)<<16, p.Words[1])
	assert.Equal(t, uint8(1), uint8(p.Words[0]&0xFF))
}

func TestBuildPitchBendCenter(t *testing.T) {
	t.Parallel()
	p, err := ump.BuildPitchBend(0, 0, 0x80000000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80000000), p.Words[1])
}

func TestSysEx7RoundTripShort(t *testing.T) {
	t.Parallel()
	data := []byte{0x01, 0x02, 0x03}
	p, err := ump.BuildSysEx7(0, ump.SysExComplete, data)
	require.NoError(t, err)

	status, out, ok := ump.ExtractSysEx7(p)
	require.True(t, ok)
	assert.Equal(t, ump.SysExComplete, status)
	assert.Equal(t, data, out)
}

func TestSysEx7RoundTripFull6Bytes(t *testing.T) {
	t.Parallel()
	data := []byte{1, 2, 3, 4, 5, 6}
	p, err := ump.BuildSysEx7(1, ump.SysExStart, data)
	require.NoError(t, err)

	status, out, ok := ump.ExtractSysEx7(p)
	require.True(t, ok)
	assert.Equal(t, ump.SysExStart, status)
	assert.Equal(t, data, out)
	assert.Equal(t, uint8(1), p.Group)
}

func TestSysEx7RejectsTooManyBytes(t *testing.T) {
	t.Parallel()
	_, err := ump.BuildSysEx7(0, ump.SysExComplete, make([]byte, 7))
	assert.Error(t, err)
}
