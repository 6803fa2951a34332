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

package config_test

import (
	"testing"

	"github.com/hollowgate/umpbridge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeValidConfig() config.Config {
	return config.Config{
		LogLevel: config.LogLevelInfo,
		Router: config.Router{
			QueueCapacity: 64,
			DefaultGroup:  0,
		},
	}
}

func TestConfigValidateValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, makeValidConfig().Validate())
}

func TestConfigValidateBadLogLevel(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	c.LogLevel = "trace"
	assert.ErrorIs(t, c.Validate(), config.ErrInvalidLogLevel)
}

func TestRedisValidateDisabled(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: false}
	assert.NoError(t, r.Validate())
}

func TestRedisValidateMissingHost(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Port: 6379}
	assert.ErrorIs(t, r.Validate(), config.ErrInvalidRedisHost)
}

func TestRedisValidateBadPort(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Host: "localhost", Port: 0}
	assert.ErrorIs(t, r.Validate(), config.ErrInvalidRedisPort)
}

func TestRouterValidateBadQueueCapacity(t *testing.T) {
	t.Parallel()
	r := config.Router{QueueCapacity: 0}
	assert.ErrorIs(t, r.Validate(), config.ErrInvalidQueueCapacity)
}

func TestRouterValidateBadDefaultGroup(t *testing.T) {
	t.Parallel()
	r := config.Router{QueueCapacity: 64, DefaultGroup: 16}
	assert.ErrorIs(t, r.Validate(), config.ErrInvalidDefaultGroup)
}

func TestSerialValidateRequiresPort(t *testing.T) {
	t.Parallel()
	s := config.Serial{Enabled: true}
	assert.ErrorIs(t, s.Validate(), config.ErrInvalidSerialPort)
}

func TestSerialValidateDisabledSkipsPort(t *testing.T) {
	t.Parallel()
	s := config.Serial{Enabled: false}
	assert.NoError(t, s.Validate())
}

func TestNetworkMIDI2ClientValidateRequiresTarget(t *testing.T) {
	t.Parallel()
	n := config.NetworkMIDI2Client{Enabled: true}
	assert.ErrorIs(t, n.Validate(), config.ErrInvalidNetworkMIDI2ClientTarget)
}

func TestNetworkMIDI2ClientValidateAcceptsServiceName(t *testing.T) {
	t.Parallel()
	n := config.NetworkMIDI2Client{Enabled: true, ServiceName: "peer._apple-midi._udp"}
	assert.NoError(t, n.Validate())
}

func TestNetworkMIDI2ClientValidateAcceptsHostPort(t *testing.T) {
	t.Parallel()
	n := config.NetworkMIDI2Client{Enabled: true, ServerHost: "10.0.0.5", ServerPort: 5004}
	assert.NoError(t, n.Validate())
}

func TestNetworkMIDI2ServerValidateBadPort(t *testing.T) {
	t.Parallel()
	n := config.NetworkMIDI2Server{Enabled: true, Port: 0}
	assert.ErrorIs(t, n.Validate(), config.ErrInvalidNetworkMIDI2ServerPort)
}
