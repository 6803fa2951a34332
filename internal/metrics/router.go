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

package metrics

// RouterSnapshot is the subset of router.Snapshot this package needs.
// Mirroring the shape here instead of importing internal/router keeps
// the dependency direction one-way: internal/cmd imports both and
// glues them together.
type RouterSnapshot struct {
	PacketsFiltered []uint64
	QueueDropped    []uint64
	TxDropped       []uint64
	PacketsRouted   [][]uint64
	RoutingErrors   uint64
}

// TransportLabel names a transport for a Prometheus label, e.g.
// "serial_din". Supplied by the caller (router.TransportID.String)
// since this package does not import internal/router.
type TransportLabel func(i int) string

// SampleRouterStats pushes a point-in-time router.Snapshot into the
// router gauge set. Called on a schedule by internal/cmd alongside the
// router's own stale-translator-state cleanup.
func (m *RouterMetrics) SampleRouterStats(snap RouterSnapshot, label TransportLabel) {
	n := len(snap.PacketsFiltered)
	for i := 0; i < n; i++ {
		m.PacketsFilteredTotal.WithLabelValues(label(i)).Set(float64(snap.PacketsFiltered[i]))
		m.QueueDroppedTotal.WithLabelValues(label(i)).Set(float64(snap.QueueDropped[i]))
		m.TxDroppedTotal.WithLabelValues(label(i)).Set(float64(snap.TxDropped[i]))
	}
	for src := 0; src < len(snap.PacketsRouted); src++ {
		for dst := 0; dst < len(snap.PacketsRouted[src]); dst++ {
			m.PacketsRoutedTotal.WithLabelValues(label(src), label(dst)).Set(float64(snap.PacketsRouted[src][dst]))
		}
	}
	m.RoutingErrorsTotal.Set(float64(snap.RoutingErrors))
}
