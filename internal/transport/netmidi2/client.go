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
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/hollowgate/umpbridge/internal/router"
	"github.com/hollowgate/umpbridge/internal/transport"
	"github.com/hollowgate/umpbridge/internal/ump"
)

// ClientTransport is the dialing-role Network-MIDI 2.0 transport: it
// connects to a fixed host:port (resolved once at Start, whether that
// address was configured directly or discovered via DNS-SD ahead of
// time) and exchanges UMP-payload datagrams with that single peer.
type ClientTransport struct {
	id         router.TransportID
	serverHost string
	serverPort int

	conn *net.UDPConn
	seq  atomic.Uint32

	wg   sync.WaitGroup
	stop chan struct{}
}

// NewClient constructs a client-role transport that dials
// serverHost:serverPort.
func NewClient(id router.TransportID, serverHost string, serverPort int) *ClientTransport {
	return &ClientTransport{id: id, serverHost: serverHost, serverPort: serverPort, stop: make(chan struct{})}
}

// ID implements transport.Transport.
func (c *ClientTransport) ID() router.TransportID { return c.id }

// Start dials the configured server and spawns the receive loop.
func (c *ClientTransport) Start(_ context.Context, sink transport.Sink) error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", c.serverHost, c.serverPort))
	if err != nil {
		return fmt.Errorf("netmidi2: resolving server address %s:%d: %w", c.serverHost, c.serverPort, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("netmidi2: dialing %s:%d: %w", c.serverHost, c.serverPort, err)
	}
	c.conn = conn

	c.wg.Add(1)
	go c.receiveLoop(sink)
	return nil
}

// Stop closes the connected UDP socket, unblocking the receive loop.
func (c *ClientTransport) Stop(_ context.Context) error {
	close(c.stop)
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			slog.Warn("netmidi2: error closing client socket", "error", err)
		}
	}
	c.wg.Wait()
	return nil
}

func (c *ClientTransport) receiveLoop(sink transport.Sink) {
	defer c.wg.Done()
	buf := make([]byte, 65536)
	for {
		select {
		case <-c.stop:
			return
		default:
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-c.stop:
				return
			default:
			}
			slog.Error("netmidi2: client read failed", "error", err)
			return
		}
		kind, _, packets, derr := decodeDatagram(buf[:n])
		if derr != nil {
			slog.Debug("netmidi2: dropping malformed datagram", "error", derr)
			continue
		}
		if kind != KindUMPPayload {
			continue
		}
		ts := transport.NowMicros()
		for _, p := range packets {
			_ = sink.Send(router.Packet{
				Source:          c.id,
				Format:          router.FormatMIDI2,
				TimestampMicros: ts,
				MIDI2:           p,
			})
		}
	}
}

// TX serializes a routed packet as a UMP payload datagram and sends it
// to the connected server.
func (c *ClientTransport) TX(p router.Packet) error {
	if p.Format != router.FormatMIDI2 {
		return fmt.Errorf("netmidi2: cannot transmit non-MIDI2 packet")
	}
	datagram, err := encodeUMPDatagram(c.seq.Add(1), []ump.Packet{p.MIDI2})
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(datagram); err != nil {
		return fmt.Errorf("netmidi2: write failed: %w", err)
	}
	return nil
}
