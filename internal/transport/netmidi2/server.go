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

	"github.com/brutella/dnssd"

	"github.com/hollowgate/umpbridge/internal/router"
	"github.com/hollowgate/umpbridge/internal/transport"
	"github.com/hollowgate/umpbridge/internal/ump"
)

const dnssdServiceType = "_midi2._udp"

// ServerTransport is the listening-role Network-MIDI 2.0 transport:
// it binds a UDP socket, advertises itself over mDNS/DNS-SD so peers
// can find it without a configured address, and fans inbound UMP
// packets from any peer into the router while tracking the most
// recently seen peer address as its transmit target.
type ServerTransport struct {
	id          router.TransportID
	bind        string
	serviceName string

	conn *net.UDPConn
	seq  atomic.Uint32

	mu       sync.Mutex
	peerAddr *net.UDPAddr

	responder dnssd.Responder

	wg   sync.WaitGroup
	stop chan struct{}
}

// NewServer constructs a server-role transport bound to bind (e.g.
// "0.0.0.0:5004") and advertised under serviceName.
func NewServer(id router.TransportID, bind, serviceName string) *ServerTransport {
	return &ServerTransport{id: id, bind: bind, serviceName: serviceName, stop: make(chan struct{})}
}

// ID implements transport.Transport.
func (s *ServerTransport) ID() router.TransportID { return s.id }

// Start opens the UDP socket, advertises it via DNS-SD, and spawns the
// receive loop.
func (s *ServerTransport) Start(ctx context.Context, sink transport.Sink) error {
	addr, err := net.ResolveUDPAddr("udp", s.bind)
	if err != nil {
		return fmt.Errorf("netmidi2: resolving bind address %s: %w", s.bind, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("netmidi2: listening on %s: %w", s.bind, err)
	}
	s.conn = conn

	port := conn.LocalAddr().(*net.UDPAddr).Port
	cfg := dnssd.Config{ //nolint:exhaustruct
		Name: s.serviceName,
		Type: dnssdServiceType,
		Port: port,
	}
	svc, err := dnssd.NewService(cfg)
	if err != nil {
		slog.Warn("netmidi2: failed to build DNS-SD service, continuing unadvertised", "error", err)
	} else {
		responder, rerr := dnssd.NewResponder()
		if rerr != nil {
			slog.Warn("netmidi2: failed to start DNS-SD responder, continuing unadvertised", "error", rerr)
		} else {
			if _, aerr := responder.Add(svc); aerr != nil {
				slog.Warn("netmidi2: failed to register DNS-SD service, continuing unadvertised", "error", aerr)
			} else {
				s.responder = responder
				go func() {
					if rerr := responder.Respond(ctx); rerr != nil && ctx.Err() == nil {
						slog.Error("netmidi2: DNS-SD responder exited", "error", rerr)
					}
				}()
			}
		}
	}

	s.wg.Add(1)
	go s.receiveLoop(sink)
	return nil
}

// Stop closes the UDP socket, unblocking the receive loop, and waits
// for it to exit.
func (s *ServerTransport) Stop(_ context.Context) error {
	close(s.stop)
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			slog.Warn("netmidi2: error closing server socket", "error", err)
		}
	}
	s.wg.Wait()
	return nil
}

func (s *ServerTransport) receiveLoop(sink transport.Sink) {
	defer s.wg.Done()
	buf := make([]byte, 65536)
	for {
		select {
		case <-s.stop:
			return
		default:
		}
		n, peer, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.stop:
				return
			default:
			}
			slog.Error("netmidi2: server read failed", "error", err)
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
		s.mu.Lock()
		s.peerAddr = peer
		s.mu.Unlock()

		ts := transport.NowMicros()
		for _, p := range packets {
			_ = sink.Send(router.Packet{
				Source:          s.id,
				Format:          router.FormatMIDI2,
				TimestampMicros: ts,
				MIDI2:           p,
			})
		}
	}
}

// TX serializes a routed packet as a UMP payload datagram and sends it
// to the most recently seen peer. Packets arriving in MIDI1 format
// must already have been translated upstream (this destination's
// FormatPreference is MIDI2-only).
func (s *ServerTransport) TX(p router.Packet) error {
	if p.Format != router.FormatMIDI2 {
		return fmt.Errorf("netmidi2: cannot transmit non-MIDI2 packet")
	}
	s.mu.Lock()
	peer := s.peerAddr
	s.mu.Unlock()
	if peer == nil {
		return fmt.Errorf("netmidi2: no peer has connected yet")
	}
	datagram, err := encodeUMPDatagram(s.seq.Add(1), []ump.Packet{p.MIDI2})
	if err != nil {
		return err
	}
	if _, err := s.conn.WriteToUDP(datagram, peer); err != nil {
		return fmt.Errorf("netmidi2: write failed: %w", err)
	}
	return nil
}
