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

package usbmidi

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/stretchr/testify/assert"

	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/router"
	"github.com/hollowgate/umpbridge/internal/ump"
)

func TestNewAssignsIDAndInitializesParser(t *testing.T) {
	tr := New(router.TransportUSBMIDI, "")
	assert.Equal(t, router.TransportUSBMIDI, tr.ID())
	assert.NotNil(t, tr.parser)
}

func TestTXRejectsUntranslatableMIDI2Packet(t *testing.T) {
	tr := New(router.TransportUSBMIDI, "")
	err := tr.TX(router.Packet{Format: router.FormatMIDI2})
	assert.Error(t, err)
}

func TestTXFailsWhenOutputNotOpen(t *testing.T) {
	tr := New(router.TransportUSBMIDI, "")
	err := tr.TX(router.Packet{
		Format: router.FormatMIDI1,
		MIDI1: midi1.Message{
			Class:   midi1.ClassChannelVoice,
			Status:  0x90,
			Data:    [2]byte{0x40, 0x7F},
			DataLen: 2,
		},
	})
	assert.Error(t, err)
}

func TestTXDownscalesMIDI2PacketBeforeRejectingForClosedPort(t *testing.T) {
	tr := New(router.TransportUSBMIDI, "")
	p, err := ump.BuildNoteOn(0, 0, 60, 32768, 0, 0)
	assert.NoError(t, err)

	// The physical port is never opened in this test; TX must still
	// translate the MIDI2 packet to MIDI1 before failing on the
	// closed-port check, proving the translation path runs for a
	// destination whose FormatPreference accepts either format.
	err = tr.TX(router.Packet{Format: router.FormatMIDI2, MIDI2: p})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "output port not open")
}

func TestHandleInboundFeedsParserAndEmitsPacket(t *testing.T) {
	tr := New(router.TransportUSBMIDI, "")
	sink := &capturingSink{}

	tr.handleInbound(sink, rawNoteOn())

	assert.Len(t, sink.packets, 1)
	assert.Equal(t, router.FormatMIDI1, sink.packets[0].Format)
	assert.Equal(t, byte(0x90), sink.packets[0].MIDI1.Status)
}

type capturingSink struct {
	packets []router.Packet
}

func (c *capturingSink) Send(p router.Packet) error {
	c.packets = append(c.packets, p)
	return nil
}

func rawNoteOn() midi.Message {
	return midi.Message{0x90, 0x40, 0x7F}
}
