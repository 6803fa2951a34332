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

// Package kv implements the "Configuration store" collaborator the
// router core depends on for SaveConfig/LoadConfig (see
// internal/router): an opaque byte-array get/put, backed by either an
// in-memory map or Redis.
package kv

import (
	"context"
	"fmt"

	"github.com/hollowgate/umpbridge/internal/config"
)

// KV is the narrow persistence interface the router's ConfigStore
// collaborator needs, plus Close for lifecycle symmetry with the
// other long-lived collaborators constructed in internal/cmd.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MakeKV constructs the KV implementation selected by cfg.Redis.
func MakeKV(ctx context.Context, cfg *config.Config) (KV, error) {
	if cfg.Redis.Enabled {
		store, err := makeRedisKV(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis kv: %w", err)
		}
		return store, nil
	}
	return makeInMemoryKV(), nil
}
