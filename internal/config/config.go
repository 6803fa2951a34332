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

// Package config holds the nested, per-section application
// configuration loaded through configulator/cobra at startup.
package config

// Config is the root of the application's configuration tree. Each
// section owns its own Validate() error, called bottom-up by
// Config.Validate.
type Config struct {
	LogLevel LogLevel `name:"log-level" default:"info" description:"Minimum level of log messages to emit (debug, info, warn, error)."`

	Metrics Metrics `name:"metrics"`
	PProf   PProf   `name:"pprof"`
	Redis   Redis   `name:"redis"`
	Router  Router  `name:"router"`

	Serial             Serial             `name:"serial"`
	USBMIDI            USBMIDI            `name:"usb-midi"`
	NetworkMIDI2Client NetworkMIDI2Client `name:"network-midi2-client"`
	NetworkMIDI2Server NetworkMIDI2Server `name:"network-midi2-server"`
}

// Metrics configures the Prometheus scrape endpoint.
type Metrics struct {
	Enabled      bool   `name:"enabled" default:"true" description:"Enable the Prometheus metrics HTTP endpoint."`
	Bind         string `name:"bind" default:"0.0.0.0" description:"Bind address for the metrics HTTP server."`
	Port         int    `name:"port" default:"9100" description:"Port for the metrics HTTP server."`
	OTLPEndpoint string `name:"otlp-endpoint" default:"" description:"OTLP gRPC endpoint to export traces to. Empty disables tracing."`
}

// PProf configures the diagnostic pprof HTTP endpoint.
type PProf struct {
	Enabled        bool     `name:"enabled" default:"false" description:"Enable the pprof diagnostic HTTP endpoint."`
	Bind           string   `name:"bind" default:"127.0.0.1" description:"Bind address for the pprof HTTP server."`
	Port           int      `name:"port" default:"6060" description:"Port for the pprof HTTP server."`
	TrustedProxies []string `name:"trusted-proxies" default:"" description:"Proxy CIDRs trusted to set forwarding headers."`
}

// Redis configures the optional Redis-backed KV store. When disabled,
// the router's configuration store falls back to an in-memory map.
type Redis struct {
	Enabled  bool   `name:"enabled" default:"false" description:"Back the configuration store with Redis instead of an in-memory map."`
	Host     string `name:"host" default:"localhost" description:"Redis server host."`
	Port     int    `name:"port" default:"6379" description:"Redis server port."`
	Password string `name:"password" default:"" description:"Redis server password."`
}

// Router configures the routing engine's queue capacity, translation
// and merge flags, and default Group.
type Router struct {
	QueueCapacity int  `name:"queue-capacity" default:"64" description:"Bounded router input queue capacity."`
	AutoTranslate bool `name:"auto-translate" default:"true" description:"Translate automatically when a packet's format doesn't match its destination's preference."`
	MergeInputs   bool `name:"merge-inputs" default:"false" description:"Deliver every input to every non-source output, ignoring the route matrix."`
	DefaultGroup  int  `name:"default-group" default:"0" description:"UMP Group (0-15) assigned to packets translated from MIDI 1.0."`
}

// Serial configures the serial DIN MIDI link transport.
type Serial struct {
	Enabled bool   `name:"enabled" default:"false" description:"Enable the serial DIN MIDI transport."`
	Port    string `name:"port" default:"" description:"Serial device path, e.g. /dev/ttyUSB0."`
	BaudMIDI bool  `name:"baud-midi" default:"true" description:"Use the standard 31250 baud MIDI DIN rate. Not read: the serial transport always runs at 31250 baud."`
}

// USBMIDI configures the USB-MIDI transport. The transport always acts
// as a host, opening a driver-enumerated port; RoleHost is not read and
// there is no device role.
type USBMIDI struct {
	Enabled    bool   `name:"enabled" default:"false" description:"Enable the USB-MIDI transport."`
	RoleHost   bool   `name:"role-host" default:"true" description:"Act as USB-MIDI host (open a driver-enumerated port). Not read: the transport always acts as host."`
	PortName   string `name:"port-name" default:"" description:"Name or substring of the USB-MIDI port to open; empty selects the first available."`
}

// NetworkMIDI2Client configures the Network-MIDI 2.0 UDP transport
// acting as a session-initiating client.
type NetworkMIDI2Client struct {
	Enabled        bool   `name:"enabled" default:"false" description:"Enable the Network-MIDI 2.0 client transport."`
	ServiceName    string `name:"service-name" default:"" description:"mDNS service instance name of the peer. Validation accepts it in place of ServerHost/ServerPort, but the client does no mDNS discovery and always dials ServerHost/ServerPort."`
	ServerHost     string `name:"server-host" default:"" description:"Peer host to dial."`
	ServerPort     int    `name:"server-port" default:"5004" description:"Peer UDP port to dial."`
}

// NetworkMIDI2Server configures the Network-MIDI 2.0 UDP transport
// acting as a session-accepting server, advertised over mDNS.
type NetworkMIDI2Server struct {
	Enabled     bool   `name:"enabled" default:"false" description:"Enable the Network-MIDI 2.0 server transport."`
	Bind        string `name:"bind" default:"0.0.0.0" description:"Bind address for the UDP session socket."`
	Port        int    `name:"port" default:"5004" description:"UDP port for the session socket."`
	ServiceName string `name:"service-name" default:"umpbridge" description:"mDNS service instance name to advertise."`
}
