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

// Package router implements the single-dispatcher, multi-transport
// routing engine: a bounded input queue, an N x N route matrix with
// per-source filtering, destination-format-aware auto-translation, and
// per-transport statistics.
package router

import (
	"context"
	"fmt"

	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/ump"
)

// TransportID names one of the router's configured transports. N, the
// number of transports, is fixed when a Router is constructed.
type TransportID uint8

// Broadcast is never a real source but may appear as a packet's
// nominal destination before matrix expansion.
const Broadcast TransportID = 0xFF

// The four transports this router is built for, in the fixed order
// defaultFormatPreferences assumes. A Router is not limited to
// exactly these four, but a Router constructed with N==4 following
// this ordering gets sensible format-preference defaults for free.
const (
	TransportSerialDIN TransportID = iota
	TransportUSBMIDI
	TransportNetworkMIDI2A
	TransportNetworkMIDI2B
)

// String names the four well-known transports for logging and metric
// labels; any other TransportID renders as its decimal value.
func (t TransportID) String() string {
	switch t {
	case TransportSerialDIN:
		return "serial_din"
	case TransportUSBMIDI:
		return "usb_midi"
	case TransportNetworkMIDI2A:
		return "network_midi2_a"
	case TransportNetworkMIDI2B:
		return "network_midi2_b"
	default:
		return fmt.Sprintf("transport_%d", uint8(t))
	}
}

// Format tags which protocol family a Packet's payload is carried in.
type Format uint8

const (
	FormatMIDI1 Format = iota
	FormatMIDI2
)

func (f Format) String() string {
	if f == FormatMIDI2 {
		return "midi2"
	}
	return "midi1"
}

// Packet is the normalized unit the router moves between transports.
// Exactly one of MIDI1/MIDI2 is meaningful, selected by Format.
type Packet struct {
	Source          TransportID
	Destination     TransportID
	Format          Format
	TimestampMicros uint64
	MIDI1           midi1.Message
	MIDI2           ump.Packet
}

// TxCallback is the capability a destination transport registers with
// the router: invoked once per packet routed to that destination.
type TxCallback func(Packet) error

// ConfigStore is the narrow persistence collaborator the router needs
// for SaveConfig/LoadConfig: an opaque byte-blob get/put keyed by
// name. Any key-value store implementing this signature (see
// internal/kv) satisfies it.
type ConfigStore interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// configStoreKey is the ConfigStore key the router saves/loads its
// configuration blob under.
const configStoreKey = "router/config"
