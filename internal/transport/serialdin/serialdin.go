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

// Package serialdin implements the serial DIN MIDI link transport: a
// byte-oriented MIDI 1.0 stream over a standard 5-pin DIN serial port
// at the fixed 31250 baud MIDI rate.
package serialdin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/router"
	"github.com/hollowgate/umpbridge/internal/transport"
)

// midiBaud is the standard DIN MIDI serial rate: 31250 bits/sec.
const midiBaud = 31250

const sysexBufferSize = 512

// Transport bridges a single serial port's MIDI 1.0 byte stream into
// the router and back. Its receive side owns one midi1.Parser,
// accessed only from its own goroutine; its transmit side serializes
// outgoing messages back to raw bytes.
type Transport struct {
	id       router.TransportID
	portPath string

	mu     sync.Mutex
	port   serial.Port
	parser *midi1.Parser
	sysex  [sysexBufferSize]byte

	wg   sync.WaitGroup
	stop chan struct{}
}

// New constructs a serial DIN transport for the given port path (e.g.
// "/dev/ttyUSB0"), identified to the router as id.
func New(id router.TransportID, portPath string) *Transport {
	t := &Transport{id: id, portPath: portPath, stop: make(chan struct{})}
	t.parser = &midi1.Parser{}
	t.parser.Init(t.sysex[:])
	return t
}

// ID implements transport.Transport.
func (t *Transport) ID() router.TransportID { return t.id }

// Start opens the serial port and spawns the receive loop.
func (t *Transport) Start(_ context.Context, sink transport.Sink) error {
	mode := &serial.Mode{
		BaudRate: midiBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(t.portPath, mode)
	if err != nil {
		return fmt.Errorf("opening serial port %s: %w", t.portPath, err)
	}
	t.mu.Lock()
	t.port = port
	t.mu.Unlock()

	t.wg.Add(1)
	go t.receiveLoop(sink)
	return nil
}

// Stop closes the serial port, which unblocks the pending Read in the
// receive loop, then waits for it to exit.
func (t *Transport) Stop(_ context.Context) error {
	close(t.stop)
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port != nil {
		if err := port.Close(); err != nil {
			slog.Warn("Error closing serial port", "port", t.portPath, "error", err)
		}
	}
	t.wg.Wait()
	return nil
}

func (t *Transport) receiveLoop(sink transport.Sink) {
	defer t.wg.Done()
	buf := make([]byte, 256)
	for {
		select {
		case <-t.stop:
			return
		default:
		}
		n, err := t.port.Read(buf)
		if err != nil {
			select {
			case <-t.stop:
				return
			default:
			}
			slog.Error("Serial read failed", "port", t.portPath, "error", err)
			return
		}
		ts := transport.NowMicros()
		for i := 0; i < n; i++ {
			msg, complete := t.parser.ParseByte(buf[i])
			if !complete {
				continue
			}
			_ = sink.Send(router.Packet{
				Source:          t.id,
				Format:          router.FormatMIDI1,
				TimestampMicros: ts,
				MIDI1:           msg,
			})
		}
	}
}

// TX serializes a routed packet back to raw MIDI 1.0 bytes and writes
// it to the serial port. Packets arriving in MIDI2 format must already
// have been translated upstream by the router's auto-translate (a
// serial destination's FormatPreference is MIDI1-only).
func (t *Transport) TX(p router.Packet) error {
	if p.Format != router.FormatMIDI1 {
		return fmt.Errorf("serialdin: cannot transmit non-MIDI1 packet")
	}
	out := midi1.Serialize(p.MIDI1)
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return fmt.Errorf("serialdin: port not open")
	}
	if _, err := port.Write(out); err != nil {
		return fmt.Errorf("serialdin: write failed: %w", err)
	}
	return nil
}
