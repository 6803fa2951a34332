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

// Package transport defines the narrow collaborator contract that
// every concrete transport (serialdin, usbmidi, netmidi2) implements:
// a receive side that feeds normalized packets into a Sink, and a
// transmit side the router invokes per destination.
package transport

import (
	"context"
	"time"

	"github.com/hollowgate/umpbridge/internal/router"
)

// Sink is the narrow slice of *router.Router a transport's receive
// loop needs: enqueue a normalized packet for dispatch. Depending on
// the interface rather than *router.Router directly keeps transports
// testable against a fake.
type Sink interface {
	Send(p router.Packet) error
}

// Transport is a receive/transmit producer-consumer pair bound to one
// TransportID. Start spawns whatever goroutines the concrete transport
// needs (a serial read loop, a UDP receive loop, ...) and returns once
// they're running; it does not block. Stop signals those goroutines to
// exit and waits for them; the serialdin, usbmidi and netmidi2
// implementations ignore ctx and wait until the goroutines return.
type Transport interface {
	ID() router.TransportID
	Start(ctx context.Context, sink Sink) error
	Stop(ctx context.Context) error
	// TX is the capability this transport registers with the router via
	// router.RegisterTx, invoked once per packet routed to it.
	TX(p router.Packet) error
}

// processStart anchors NowMicros; it carries time.Now's monotonic reading.
var processStart = time.Now()

// NowMicros returns a monotonic microsecond timestamp suitable for
// router.Packet.TimestampMicros: microseconds since process start. It is
// monotonic only within a single process run (time.Now's monotonic
// reading), which is all the per-(source,destination) ordering guarantee
// the router needs.
func NowMicros() uint64 {
	return uint64(time.Since(processStart).Microseconds())
}
