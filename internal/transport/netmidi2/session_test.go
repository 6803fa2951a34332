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

package netmidi2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowgate/umpbridge/internal/ump"
)

func TestEncodeDecodeUMPDatagramRoundTrip(t *testing.T) {
	noteOn, err := ump.BuildNoteOn(0, 0, 60, 32768, 0, 0)
	require.NoError(t, err)
	cc, err := ump.BuildControlChange(0, 0, 7, 0x7FFFFFFF)
	require.NoError(t, err)

	datagram, err := encodeUMPDatagram(42, []ump.Packet{noteOn, cc})
	require.NoError(t, err)

	kind, seq, packets, err := decodeDatagram(datagram)
	require.NoError(t, err)
	assert.Equal(t, KindUMPPayload, kind)
	assert.Equal(t, uint32(42), seq)
	require.Len(t, packets, 2)
	assert.Equal(t, noteOn, packets[0])
	assert.Equal(t, cc, packets[1])
}

func TestDecodeDatagramTooShort(t *testing.T) {
	_, _, _, err := decodeDatagram([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestDecodeDatagramNonUMPKindIgnoresBody(t *testing.T) {
	datagram := []byte{byte(KindSessionStart), 0, 0, 0, 1, 0xAA, 0xBB, 0xCC}
	kind, seq, packets, err := decodeDatagram(datagram)
	require.NoError(t, err)
	assert.Equal(t, KindSessionStart, kind)
	assert.Equal(t, uint32(1<<24), seq)
	assert.Nil(t, packets)
}
