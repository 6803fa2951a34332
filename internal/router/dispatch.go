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

package router

import (
	"time"

	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/routererr"
	"github.com/hollowgate/umpbridge/internal/ump"
)

// dispatchLoop is the single consumer of the bounded input queue. It
// runs until Deinit closes r.stop, at which point it drains whatever
// remains queued before exiting.
func (r *Router) dispatchLoop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.stop:
			r.drain()
			return
		default:
		}

		p, ok := r.in.Pop()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		r.dispatchOne(p)
	}
}

// drain processes whatever is left in the queue without blocking,
// honoring Deinit's quiesce-then-exit contract.
func (r *Router) drain() {
	for {
		p, ok := r.in.Pop()
		if !ok {
			return
		}
		r.dispatchOne(p)
	}
}

// dispatchOne implements the per-packet dispatch algorithm: source
// filter, then matrix/merge expansion to every eligible destination,
// with format-aware auto-translation and per-destination failure
// isolation.
func (r *Router) dispatchOne(p Packet) {
	cfg := r.snapshot()
	src := int(p.Source)
	if src < 0 || src >= cfg.N {
		return
	}
	if !cfg.Filters[src].Pass(p) {
		r.stats.bumpFiltered(src)
		return
	}

	for dst := 0; dst < cfg.N; dst++ {
		if dst == src {
			continue
		}
		if !cfg.MergeInputs && !cfg.Route[src][dst] {
			continue
		}

		out := p
		out.Destination = TransportID(dst)
		pref := cfg.FormatPrefs[dst]
		if !pref.AcceptsEither && pref.Format != p.Format {
			if !cfg.AutoTranslate {
				r.stats.bumpRoutingErrors()
				continue
			}
			translated, err := r.translate(p, pref.Format, cfg.DefaultGroup)
			if err != nil {
				r.stats.bumpRoutingErrors()
				continue
			}
			out = translated
			out.Destination = TransportID(dst)
		}

		cb, ok := r.tx.Load(TransportID(dst))
		if !ok {
			continue
		}
		if err := cb(out); err != nil {
			r.stats.bumpDroppedDst(dst)
			continue
		}
		r.stats.bumpRouted(src, dst)
	}
}

// translate converts p into the target format via the xlate package.
// SysEx7 fragments are emitted as one packet per call; multi-packet
// System Exclusive fan-out across the queue is intentionally
// single-packet-per-dispatch, since parser/codec failures never reach
// the router (the caller already fed it complete normalized packets).
func (r *Router) translate(p Packet, target Format, defaultGroup uint8) (Packet, error) {
	r.translator.SetDefaultGroup(defaultGroup)
	out := p
	out.Format = target
	switch target {
	case FormatMIDI2:
		packets, err := r.translator.Translate1To2(p.MIDI1)
		if err != nil {
			return Packet{}, err
		}
		if len(packets) == 0 {
			return Packet{}, routererr.ErrNotSupported
		}
		out.MIDI2 = packets[0]
		out.MIDI1 = midi1.Message{}
	case FormatMIDI1:
		msg, err := r.translator.Translate2To1(p.MIDI2)
		if err != nil {
			return Packet{}, err
		}
		out.MIDI1 = msg
		out.MIDI2 = ump.Packet{}
	default:
		return Packet{}, routererr.ErrInvalidArgument
	}
	return out, nil
}
