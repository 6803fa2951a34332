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
	"sync"
	"sync/atomic"
	"time"

	"github.com/hollowgate/umpbridge/internal/queue"
	"github.com/hollowgate/umpbridge/internal/routererr"
	"github.com/hollowgate/umpbridge/internal/xlate"
	"github.com/puzpuzpuz/xsync/v4"
)

// Router is the single-dispatcher routing engine: a bounded input
// queue feeding one dispatcher goroutine, which reads an atomically
// published Config snapshot and invokes registered per-destination
// callbacks. Configuration mutations never block the dispatcher; they
// build a new Config and swap a pointer.
type Router struct {
	n int

	cfg atomic.Pointer[Config]

	tx *xsync.Map[TransportID, TxCallback]

	in *queue.Ring[Packet]

	translator *xlate.Translator

	stats *Stats

	wg      sync.WaitGroup
	stop    chan struct{}
	running bool
	mu      sync.Mutex
}

// New constructs a Router for n transports (IDs 0..n-1) with an empty
// configuration and a bounded input queue of the given capacity.
// queueCapacity <= 0 uses queue.DefaultCapacity (64, the router's
// fixed default queue depth).
func New(n int, queueCapacity int) *Router {
	r := &Router{
		n:          n,
		tx:         xsync.NewMap[TransportID, TxCallback](),
		in:         queue.New[Packet](queueCapacity),
		translator: xlate.New(xlate.Options{}),
		stats:      newStats(n),
		stop:       make(chan struct{}),
	}
	r.cfg.Store(NewConfig(n))
	return r
}

func (r *Router) snapshot() *Config {
	return r.cfg.Load()
}

func (r *Router) publish(cfg *Config) {
	r.cfg.Store(cfg)
}

// Init spawns the dispatcher goroutine. Calling Init twice without an
// intervening Deinit returns ErrInvalidState.
func (r *Router) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return routererr.ErrInvalidState
	}
	r.running = true
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go r.dispatchLoop()
	return nil
}

// Deinit signals the dispatcher to stop once its queue drains and
// waits for it to exit.
func (r *Router) Deinit() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stop)
	r.mu.Unlock()
	r.wg.Wait()
}

// Send enqueues a packet for dispatch without blocking. It returns
// ErrQueueFull if the bounded input queue is at capacity.
func (r *Router) Send(p Packet) error {
	if !r.in.Push(p) {
		r.stats.bumpDropped(int(p.Source))
		return routererr.ErrQueueFull
	}
	return nil
}

// RegisterTx installs the transmit callback invoked for every packet
// routed to transportID.
func (r *Router) RegisterTx(transportID TransportID, cb TxCallback) {
	r.tx.Store(transportID, cb)
}

// SetRoute enables or disables delivery from src to dst.
func (r *Router) SetRoute(src, dst TransportID, enabled bool) error {
	cur := r.snapshot()
	if !cur.validTransport(src) || !cur.validTransport(dst) {
		return routererr.ErrInvalidArgument
	}
	next := cur.clone()
	next.Route[src][dst] = enabled
	r.publish(next)
	return nil
}

// GetRoute reports whether src may currently deliver to dst.
func (r *Router) GetRoute(src, dst TransportID) (bool, error) {
	cur := r.snapshot()
	if !cur.validTransport(src) || !cur.validTransport(dst) {
		return false, routererr.ErrInvalidArgument
	}
	return cur.Route[src][dst], nil
}

// SetFilter replaces the filter installed for src.
func (r *Router) SetFilter(src TransportID, filter Filter) error {
	cur := r.snapshot()
	if !cur.validTransport(src) {
		return routererr.ErrInvalidArgument
	}
	next := cur.clone()
	next.Filters[src] = filter
	r.publish(next)
	return nil
}

// SetMergeMode toggles merge_inputs: when true, every source is
// delivered to every non-source destination regardless of the matrix.
func (r *Router) SetMergeMode(enabled bool) {
	cur := r.snapshot()
	next := cur.clone()
	next.MergeInputs = enabled
	r.publish(next)
}

// SetAutoTranslate toggles whether the dispatcher converts between
// MIDI 1.0 and MIDI 2.0 when source and destination formats differ.
func (r *Router) SetAutoTranslate(enabled bool) {
	cur := r.snapshot()
	next := cur.clone()
	next.AutoTranslate = enabled
	r.publish(next)
}

// SetDefaultGroup sets the UMP group auto-translate assigns to
// messages built from a MIDI 1.0 source, which carries no group of
// its own.
func (r *Router) SetDefaultGroup(group uint8) {
	cur := r.snapshot()
	next := cur.clone()
	next.DefaultGroup = group
	r.publish(next)
}

// CleanupStaleTranslatorState reaps any in-flight SysEx7 reassembly
// state abandoned by a lost End packet, returning the number of
// streams removed. Intended to run on a schedule (see internal/cmd).
func (r *Router) CleanupStaleTranslatorState(maxAge time.Duration) int {
	return r.translator.CleanupStaleStreams(maxAge)
}

// SetFormatPreference overrides the protocol family a destination
// transport requires (or its acceptance of either), for deployments
// whose transport ordering doesn't match defaultFormatPreferences.
func (r *Router) SetFormatPreference(dst TransportID, pref FormatPreference) error {
	cur := r.snapshot()
	if !cur.validTransport(dst) {
		return routererr.ErrInvalidArgument
	}
	next := cur.clone()
	next.FormatPrefs[dst] = pref
	r.publish(next)
	return nil
}
