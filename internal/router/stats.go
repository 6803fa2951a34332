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

import "sync/atomic"

// Stats holds the router's per-slot counters. Every field uses
// relaxed atomic increments: exact totals under contention aren't
// required, only that no counter update blocks the dispatcher or a
// producer.
type Stats struct {
	n                int
	packetsFiltered  []atomic.Uint64 // per source: rejected by that source's filter
	queueDropped     []atomic.Uint64 // per source: Send() found the input queue full
	txDropped        []atomic.Uint64 // per destination: tx_callback returned an error
	packetsRouted    []atomic.Uint64 // flattened [src*n+dst]: successful deliveries
	routingErrors    atomic.Uint64   // auto-translate declined or disabled for a format mismatch
}

func newStats(n int) *Stats {
	return &Stats{
		n:               n,
		packetsFiltered: make([]atomic.Uint64, n),
		queueDropped:    make([]atomic.Uint64, n),
		txDropped:       make([]atomic.Uint64, n),
		packetsRouted:   make([]atomic.Uint64, n*n),
	}
}

func (s *Stats) bumpFiltered(src int)    { s.packetsFiltered[src].Add(1) }
func (s *Stats) bumpDropped(src int)     { s.queueDropped[src].Add(1) }
func (s *Stats) bumpDroppedDst(dst int)  { s.txDropped[dst].Add(1) }
func (s *Stats) bumpRoutingErrors()      { s.routingErrors.Add(1) }
func (s *Stats) bumpRouted(src, dst int) { s.packetsRouted[src*s.n+dst].Add(1) }

// Snapshot is a point-in-time, race-free copy of Stats suitable for
// reporting.
type Snapshot struct {
	PacketsFiltered []uint64
	QueueDropped    []uint64
	TxDropped       []uint64
	PacketsRouted   [][]uint64
	RoutingErrors   uint64
}

// GetStats copies the router's current counters into a Snapshot.
func (r *Router) GetStats() Snapshot {
	s := r.stats
	filtered := make([]uint64, s.n)
	queueDropped := make([]uint64, s.n)
	txDropped := make([]uint64, s.n)
	for i := 0; i < s.n; i++ {
		filtered[i] = s.packetsFiltered[i].Load()
		queueDropped[i] = s.queueDropped[i].Load()
		txDropped[i] = s.txDropped[i].Load()
	}
	routed := make([][]uint64, s.n)
	for i := 0; i < s.n; i++ {
		routed[i] = make([]uint64, s.n)
		for j := 0; j < s.n; j++ {
			routed[i][j] = s.packetsRouted[i*s.n+j].Load()
		}
	}
	return Snapshot{
		PacketsFiltered: filtered,
		QueueDropped:    queueDropped,
		TxDropped:       txDropped,
		PacketsRouted:   routed,
		RoutingErrors:   s.routingErrors.Load(),
	}
}

// ResetStats zeroes every counter.
func (r *Router) ResetStats() {
	s := r.stats
	for i := range s.packetsFiltered {
		s.packetsFiltered[i].Store(0)
	}
	for i := range s.queueDropped {
		s.queueDropped[i].Store(0)
	}
	for i := range s.txDropped {
		s.txDropped[i].Store(0)
	}
	for i := range s.packetsRouted {
		s.packetsRouted[i].Store(0)
	}
	s.routingErrors.Store(0)
}
