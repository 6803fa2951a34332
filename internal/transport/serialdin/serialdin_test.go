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

package serialdin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/router"
)

func TestNewAssignsIDAndInitializesParser(t *testing.T) {
	tr := New(router.TransportSerialDIN, "/dev/ttyUSB0")
	assert.Equal(t, router.TransportSerialDIN, tr.ID())
	assert.NotNil(t, tr.parser)
}

func TestTXRejectsNonMIDI1Packet(t *testing.T) {
	tr := New(router.TransportSerialDIN, "/dev/ttyUSB0")
	err := tr.TX(router.Packet{Format: router.FormatMIDI2})
	assert.Error(t, err)
}

func TestTXFailsWhenPortNotOpen(t *testing.T) {
	tr := New(router.TransportSerialDIN, "/dev/ttyUSB0")
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
