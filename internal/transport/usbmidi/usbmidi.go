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

// Package usbmidi implements the USB-MIDI interface transport over
// gitlab.com/gomidi/midi/v2 and its rtmididrv backend. It opens ports
// the driver enumerates (host role) only; it does not act as a USB-MIDI
// device. The USB-MIDI 1.0 Event Packet framing itself
// (Cable/CIN nibble plus up to 3 data bytes) is owned by the
// driver beneath midi/v2; this package only bridges the library's
// already-framed messages to the router's raw MIDI 1.0 byte model, so
// the one internal/midi1 parser implementation stays the single
// source of truth for running status and SysEx framing.
package usbmidi

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/router"
	"github.com/hollowgate/umpbridge/internal/transport"
	"github.com/hollowgate/umpbridge/internal/xlate"
)

const sysexBufferSize = 512

// Transport bridges one USB-MIDI port pair (matched by name, or the
// first available port when name is empty) into the router.
type Transport struct {
	id       router.TransportID
	portName string

	mu         sync.Mutex
	in         drivers.In
	out        drivers.Out
	send       func(midi.Message) error
	stopFn     func()
	parser     *midi1.Parser
	sysex      [sysexBufferSize]byte
	translator *xlate.Translator

	stopped chan struct{}
}

// New constructs a USB-MIDI transport. If portName is empty, Start
// binds the first in/out port the driver enumerates (the host-role
// default); a non-empty name selects a specific interface.
func New(id router.TransportID, portName string) *Transport {
	t := &Transport{id: id, portName: portName, stopped: make(chan struct{})}
	t.parser = &midi1.Parser{}
	t.parser.Init(t.sysex[:])
	t.translator = xlate.New(xlate.Options{})
	return t
}

// ID implements transport.Transport.
func (t *Transport) ID() router.TransportID { return t.id }

// Start opens the configured (or first available) in/out port pair
// and begins listening for inbound messages.
func (t *Transport) Start(_ context.Context, sink transport.Sink) error {
	in, err := t.findIn()
	if err != nil {
		return fmt.Errorf("usbmidi: finding input port: %w", err)
	}
	out, err := t.findOut()
	if err != nil {
		return fmt.Errorf("usbmidi: finding output port: %w", err)
	}

	send, err := midi.SendTo(out)
	if err != nil {
		return fmt.Errorf("usbmidi: opening output port %s: %w", out, err)
	}

	stopFn, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		t.handleInbound(sink, msg)
	}, midi.UseSysEx())
	if err != nil {
		return fmt.Errorf("usbmidi: listening on input port %s: %w", in, err)
	}

	t.mu.Lock()
	t.in, t.out, t.send, t.stopFn = in, out, send, stopFn
	t.mu.Unlock()
	return nil
}

// Stop cancels the listener and releases the port pair.
func (t *Transport) Stop(_ context.Context) error {
	t.mu.Lock()
	stopFn := t.stopFn
	t.mu.Unlock()
	if stopFn != nil {
		stopFn()
	}
	close(t.stopped)
	return nil
}

func (t *Transport) handleInbound(sink transport.Sink, msg midi.Message) {
	ts := transport.NowMicros()
	raw := msg.Bytes()
	t.mu.Lock()
	for _, b := range raw {
		parsed, complete := t.parser.ParseByte(b)
		if !complete {
			continue
		}
		_ = sink.Send(router.Packet{
			Source:          t.id,
			Format:          router.FormatMIDI1,
			TimestampMicros: ts,
			MIDI1:           parsed,
		})
	}
	t.mu.Unlock()
}

// TX serializes a routed packet and sends it out the USB-MIDI output
// port. This destination accepts either format (its FormatPreference
// has AcceptsEither set, so the router never auto-translates before
// calling TX), but the physical USB-MIDI 1.0 endpoint only carries
// MIDI 1.0 bytes, so a MIDI2 packet is downscaled here before it hits
// the wire.
func (t *Transport) TX(p router.Packet) error {
	msg := p.MIDI1
	if p.Format != router.FormatMIDI1 {
		translated, err := t.translator.Translate2To1(p.MIDI2)
		if err != nil {
			return fmt.Errorf("usbmidi: translating to MIDI1: %w", err)
		}
		msg = translated
	}
	t.mu.Lock()
	send := t.send
	t.mu.Unlock()
	if send == nil {
		return fmt.Errorf("usbmidi: output port not open")
	}
	raw := midi1.Serialize(msg)
	if err := send(midi.Message(raw)); err != nil {
		return fmt.Errorf("usbmidi: send failed: %w", err)
	}
	return nil
}

func (t *Transport) findIn() (drivers.In, error) {
	if t.portName != "" {
		return midi.FindInPort(t.portName)
	}
	in, err := midi.InPort(0)
	if err != nil {
		slog.Warn("usbmidi: no input ports enumerated", "error", err)
	}
	return in, err
}

func (t *Transport) findOut() (drivers.Out, error) {
	if t.portName != "" {
		return midi.FindOutPort(t.portName)
	}
	out, err := midi.OutPort(0)
	if err != nil {
		slog.Warn("usbmidi: no output ports enumerated", "error", err)
	}
	return out, err
}
