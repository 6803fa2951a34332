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

package xlate_test

import (
	"testing"
	"time"

	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/routererr"
	"github.com/hollowgate/umpbridge/internal/ump"
	"github.com/hollowgate/umpbridge/internal/xlate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteOnRoundTrip(t *testing.T) {
	t.Parallel()
	// Testable property scenario 4: midi1{status=0x90, channel=0,
	// note=60, velocity=64} -> translate to UMP -> translate back ->
	// velocity downscales to exactly 64.
	tr := xlate.New(xlate.Options{})
	msg := midi1.Message{
		Class:   midi1.ClassChannelVoice,
		Status:  0x90,
		Channel: 0,
		Data:    [2]byte{60, 64},
		DataLen: 2,
	}

	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	back, err := tr.Translate2To1(packets[0])
	require.NoError(t, err)
	assert.Equal(t, byte(0x90), back.Status)
	assert.Equal(t, uint8(60), back.Data[0])
	assert.Equal(t, uint8(64), back.Data[1])
}

func TestNoteOffRoundTrip(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	msg := midi1.Message{Class: midi1.ClassChannelVoice, Status: 0x85, Channel: 5, Data: [2]byte{72, 0}, DataLen: 2}

	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	back, err := tr.Translate2To1(packets[0])
	require.NoError(t, err)
	assert.Equal(t, byte(0x85), back.Status)
	assert.Equal(t, uint8(5), back.Channel)
	assert.Equal(t, uint8(72), back.Data[0])
}

func TestControlChangeRoundTrip(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	msg := midi1.Message{Class: midi1.ClassChannelVoice, Status: 0xB2, Channel: 2, Data: [2]byte{7, 100}, DataLen: 2}

	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)

	back, err := tr.Translate2To1(packets[0])
	require.NoError(t, err)
	assert.Equal(t, byte(0xB2), back.Status)
	assert.Equal(t, uint8(7), back.Data[0])
	assert.Equal(t, uint8(100), back.Data[1])
}

func TestProgramChangeRoundTrip(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	msg := midi1.Message{Class: midi1.ClassChannelVoice, Status: 0xC3, Channel: 3, Data: [2]byte{42, 0}, DataLen: 1}

	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)

	back, err := tr.Translate2To1(packets[0])
	require.NoError(t, err)
	assert.Equal(t, byte(0xC3), back.Status)
	assert.Equal(t, uint8(42), back.Data[0])
}

func TestPitchBendRoundTrip(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	// Center bend: LSB=0, MSB=64 -> v14 = 8192 (center).
	msg := midi1.Message{Class: midi1.ClassChannelVoice, Status: 0xE0, Channel: 0, Data: [2]byte{0, 64}, DataLen: 2}

	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80000000), packets[0].Words[1])

	back, err := tr.Translate2To1(packets[0])
	require.NoError(t, err)
	assert.Equal(t, uint8(0), back.Data[0])
	assert.Equal(t, uint8(64), back.Data[1])
}

func TestRealTimeTranslatesToSystemPacket(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	msg := midi1.Message{Class: midi1.ClassRealTime, Status: 0xFA}

	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	assert.Equal(t, ump.MTSystem, packets[0].Type)

	back, err := tr.Translate2To1(packets[0])
	require.NoError(t, err)
	assert.Equal(t, midi1.ClassRealTime, back.Class)
	assert.Equal(t, byte(0xFA), back.Status)
}

func TestPerNotePitchBendHasNoMidi1Equivalent(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	p := ump.Packet{Type: ump.MTMIDI2ChannelVoice, NumWords: 2}
	p.Words[0] = uint32(ump.MTMIDI2ChannelVoice)<<28 | 0x6<<20 // per-note pitch bend status nibble

	_, err := tr.Translate2To1(p)
	assert.ErrorIs(t, err, routererr.ErrNotSupported)
}

func TestSysExFragmentationAndReassembly(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	payload := make([]byte, 14)
	for i := range payload {
		payload[i] = byte(i + 1)
	}

	msg := midi1.Message{Class: midi1.ClassSystemExclusive, SysEx: payload}
	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)
	// 14 bytes at 6/packet: Start(6) + Continue(6) + End(2).
	require.Len(t, packets, 3)
	assert.Equal(t, ump.SysExStart, mustStatus(t, packets[0]))
	assert.Equal(t, ump.SysExContinue, mustStatus(t, packets[1]))
	assert.Equal(t, ump.SysExEnd, mustStatus(t, packets[2]))

	var reassembled []byte
	for _, p := range packets {
		data, done := tr.ReassembleSysEx7(1, p)
		if done {
			reassembled = data
		}
	}
	assert.Equal(t, payload, reassembled)
}

func TestSysExFragmentationSinglePacket(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	msg := midi1.Message{Class: midi1.ClassSystemExclusive, SysEx: []byte{0x01, 0x02}}
	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	assert.Equal(t, ump.SysExComplete, mustStatus(t, packets[0]))
}

func TestCleanupStaleStreamsReapsAbandonedTransfers(t *testing.T) {
	t.Parallel()
	tr := xlate.New(xlate.Options{})
	msg := midi1.Message{Class: midi1.ClassSystemExclusive, SysEx: make([]byte, 12)}
	packets, err := tr.Translate1To2(msg)
	require.NoError(t, err)

	// Feed only the Start packet; the stream never completes.
	_, done := tr.ReassembleSysEx7(9, packets[0])
	assert.False(t, done)

	cleaned := tr.CleanupStaleStreams(-time.Second)
	assert.Equal(t, 1, cleaned)
}

func mustStatus(t *testing.T, p ump.Packet) ump.SysEx7Status {
	t.Helper()
	status, _, ok := ump.ExtractSysEx7(p)
	require.True(t, ok)
	return status
}
