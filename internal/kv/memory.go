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

package kv

import (
	"context"
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"
)

// inMemoryKV is the default KV backend: a lock-minimal concurrent map,
// adequate for a single-process router that isn't sharing its
// configuration store across instances.
type inMemoryKV struct {
	m *xsync.Map[string, []byte]
}

func makeInMemoryKV() KV {
	return inMemoryKV{m: xsync.NewMap[string, []byte]()}
}

func (kv inMemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := kv.m.Load(key)
	if !ok {
		return nil, fmt.Errorf("key %q not found", key)
	}
	return v, nil
}

func (kv inMemoryKV) Set(_ context.Context, key string, value []byte) error {
	kv.m.Store(key, value)
	return nil
}

func (kv inMemoryKV) Delete(_ context.Context, key string) error {
	kv.m.Delete(key)
	return nil
}

func (kv inMemoryKV) Close() error {
	return nil
}
