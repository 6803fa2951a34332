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

package config

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidRedisHost indicates that the provided Redis host is not valid.
	ErrInvalidRedisHost = errors.New("invalid Redis host provided")
	// ErrInvalidRedisPort indicates that the provided Redis port is not valid.
	ErrInvalidRedisPort = errors.New("invalid Redis port provided")
	// ErrInvalidMetricsBindAddress indicates that the metrics server bind address is not valid.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
	// ErrInvalidPProfBindAddress indicates that the pprof server bind address is not valid.
	ErrInvalidPProfBindAddress = errors.New("invalid pprof server bind address provided")
	// ErrInvalidPProfPort indicates that the pprof server port is not valid.
	ErrInvalidPProfPort = errors.New("invalid pprof server port provided")
	// ErrInvalidQueueCapacity indicates that the router's queue capacity is not positive.
	ErrInvalidQueueCapacity = errors.New("invalid router queue capacity provided")
	// ErrInvalidDefaultGroup indicates the router's default translation Group is outside 0-15.
	ErrInvalidDefaultGroup = errors.New("invalid router default group provided, must be 0-15")
	// ErrInvalidSerialPort indicates the serial transport is enabled without a device path.
	ErrInvalidSerialPort = errors.New("serial port path is required when the serial transport is enabled")
	// ErrInvalidNetworkMIDI2ClientTarget indicates the client transport has neither mDNS name nor host/port.
	ErrInvalidNetworkMIDI2ClientTarget = errors.New("network-midi2 client requires either a service name or a server host and port")
	// ErrInvalidNetworkMIDI2ServerPort indicates the server transport's port is not valid.
	ErrInvalidNetworkMIDI2ServerPort = errors.New("invalid network-midi2 server port provided")
)

// Validate validates the Redis configuration.
func (r Redis) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Host == "" {
		return ErrInvalidRedisHost
	}
	if r.Port <= 0 || r.Port > 65535 {
		return ErrInvalidRedisPort
	}
	return nil
}

// Validate validates the Metrics configuration.
func (m Metrics) Validate() error {
	if !m.Enabled {
		return nil
	}
	if m.Bind == "" {
		return ErrInvalidMetricsBindAddress
	}
	if m.Port <= 0 || m.Port > 65535 {
		return ErrInvalidMetricsPort
	}
	return nil
}

// Validate validates the PProf configuration.
func (p PProf) Validate() error {
	if !p.Enabled {
		return nil
	}
	if p.Bind == "" {
		return ErrInvalidPProfBindAddress
	}
	if p.Port <= 0 || p.Port > 65535 {
		return ErrInvalidPProfPort
	}
	return nil
}

// Validate validates the Router configuration.
func (r Router) Validate() error {
	if r.QueueCapacity <= 0 {
		return ErrInvalidQueueCapacity
	}
	if r.DefaultGroup < 0 || r.DefaultGroup > 15 {
		return ErrInvalidDefaultGroup
	}
	return nil
}

// Validate validates the Serial transport configuration.
func (s Serial) Validate() error {
	if !s.Enabled {
		return nil
	}
	if s.Port == "" {
		return ErrInvalidSerialPort
	}
	return nil
}

// Validate validates the USBMIDI transport configuration.
func (USBMIDI) Validate() error {
	return nil
}

// Validate validates the NetworkMIDI2Client transport configuration.
func (n NetworkMIDI2Client) Validate() error {
	if !n.Enabled {
		return nil
	}
	if n.ServiceName == "" && (n.ServerHost == "" || n.ServerPort <= 0) {
		return ErrInvalidNetworkMIDI2ClientTarget
	}
	return nil
}

// Validate validates the NetworkMIDI2Server transport configuration.
func (n NetworkMIDI2Server) Validate() error {
	if !n.Enabled {
		return nil
	}
	if n.Port <= 0 || n.Port > 65535 {
		return ErrInvalidNetworkMIDI2ServerPort
	}
	return nil
}

// Validate validates the entire configuration tree, bottom-up.
func (c Config) Validate() error {
	if c.LogLevel != LogLevelDebug &&
		c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn &&
		c.LogLevel != LogLevelError {
		return ErrInvalidLogLevel
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Router.Validate(); err != nil {
		return err
	}
	if err := c.Serial.Validate(); err != nil {
		return err
	}
	if err := c.USBMIDI.Validate(); err != nil {
		return err
	}
	if err := c.NetworkMIDI2Client.Validate(); err != nil {
		return err
	}
	if err := c.NetworkMIDI2Server.Validate(); err != nil {
		return err
	}
	return nil
}
