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

import "github.com/prometheus/client_golang/prometheus"

// RouterMetrics mirrors router.Stats as Prometheus gauges, refreshed
// on a schedule by whatever calls SampleRouterStats (see
// internal/cmd, which ties this to a gocron job alongside the router's
// own stale-state cleanup).
type RouterMetrics struct {
	PacketsRoutedTotal   *prometheus.GaugeVec
	PacketsFilteredTotal *prometheus.GaugeVec
	QueueDroppedTotal    *prometheus.GaugeVec
	TxDroppedTotal       *prometheus.GaugeVec
	RoutingErrorsTotal   prometheus.Gauge
}

// NewRouterMetrics constructs and registers the router's gauge set.
func NewRouterMetrics() *RouterMetrics {
	m := &RouterMetrics{
		PacketsRoutedTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "umpbridge_packets_routed_total",
			Help: "Packets successfully delivered, by source and destination transport.",
		}, []string{"source", "destination"}),
		PacketsFilteredTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "umpbridge_packets_filtered_total",
			Help: "Packets rejected by a source's filter, by source transport.",
		}, []string{"source"}),
		QueueDroppedTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "umpbridge_queue_dropped_total",
			Help: "Packets dropped because the router's input queue was full, by source transport.",
		}, []string{"source"}),
		TxDroppedTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "umpbridge_tx_dropped_total",
			Help: "Packets dropped because a destination's tx callback failed, by destination transport.",
		}, []string{"destination"}),
		RoutingErrorsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "umpbridge_routing_errors_total",
			Help: "Packets skipped because auto-translation was declined or disabled for a format mismatch.",
		}),
	}
	prometheus.MustRegister(
		m.PacketsRoutedTotal,
		m.PacketsFilteredTotal,
		m.QueueDroppedTotal,
		m.TxDroppedTotal,
		m.RoutingErrorsTotal,
	)
	return m
}
