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

// Package netmidi2 implements the two UDP-based Network-MIDI 2.0
// transports (client and server roles) over the minimal session
// framing this router interacts with: a one-byte packet kind, a
// little-endian sequence number, and — for the UMP-payload kind — a
// run of raw UMP words. Only the UMP-payload kind is acted on: datagrams
// of the session kinds (Start/Ack/End/Keepalive/Retransmit) are decoded
// for their header and otherwise ignored, and no retransmission, jitter
// buffering, or session negotiation takes place.
package netmidi2

import (
	"encoding/binary"
	"fmt"

	"github.com/hollowgate/umpbridge/internal/ump"
)

// Kind is the first byte of every datagram this transport sends or
// receives.
type Kind uint8

const (
	KindUMPPayload        Kind = 0x00
	KindSessionStart      Kind = 0x01
	KindSessionAck        Kind = 0x02
	KindSessionEnd        Kind = 0x03
	KindKeepalive         Kind = 0x04
	KindRetransmitRequest Kind = 0x05
)

// headerSize is the fixed kind byte plus the 4-byte little-endian
// sequence number every datagram carries.
const headerSize = 5

// maxUMPWordsPerDatagram bounds how many UMP words encodeUMPDatagram
// packs into one outgoing packet, keeping it well under a typical
// network MTU without path-MTU discovery.
const maxUMPWordsPerDatagram = 256

// encodeUMPDatagram renders a run of UMP packets into one wire
// datagram: header, then each packet's words in little-endian, back to
// back, per the UMP wire format.
func encodeUMPDatagram(seq uint32, packets []ump.Packet) ([]byte, error) {
	buf := make([]byte, headerSize, headerSize+4*maxUMPWordsPerDatagram)
	buf[0] = byte(KindUMPPayload)
	binary.LittleEndian.PutUint32(buf[1:5], seq)
	for _, p := range packets {
		if (len(buf)-headerSize)/4+int(p.NumWords) > maxUMPWordsPerDatagram {
			return nil, fmt.Errorf("netmidi2: datagram would exceed %d UMP words", maxUMPWordsPerDatagram)
		}
		var words [4]uint32
		if err := ump.Encode(p, words[:]); err != nil {
			return nil, fmt.Errorf("netmidi2: encoding ump packet: %w", err)
		}
		for i := 0; i < int(p.NumWords); i++ {
			var wb [4]byte
			binary.LittleEndian.PutUint32(wb[:], words[i])
			buf = append(buf, wb[:]...)
		}
	}
	return buf, nil
}

// decodeDatagram splits an incoming datagram into its kind, sequence
// number, and (for KindUMPPayload) the decoded UMP packets it carries.
func decodeDatagram(data []byte) (kind Kind, seq uint32, packets []ump.Packet, err error) {
	if len(data) < headerSize {
		return 0, 0, nil, fmt.Errorf("netmidi2: datagram too short: %d bytes", len(data))
	}
	kind = Kind(data[0])
	seq = binary.LittleEndian.Uint32(data[1:5])
	if kind != KindUMPPayload {
		return kind, seq, nil, nil
	}
	body := data[headerSize:]
	if len(body)%4 != 0 {
		return kind, seq, nil, fmt.Errorf("netmidi2: payload not word-aligned: %d bytes", len(body))
	}
	words := make([]uint32, len(body)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(body[i*4 : i*4+4])
	}
	for i := 0; i < len(words); {
		p, derr := ump.Decode(words[i:])
		if derr != nil {
			return kind, seq, packets, fmt.Errorf("netmidi2: decoding ump word %d: %w", i, derr)
		}
		packets = append(packets, p)
		i += int(p.NumWords)
	}
	return kind, seq, packets, nil
}
