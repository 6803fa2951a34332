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

package kv_test

import (
	"context"
	"testing"

	"github.com/hollowgate/umpbridge/internal/config"
	"github.com/hollowgate/umpbridge/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestKV(t *testing.T) kv.KV {
	t.Helper()
	store, err := kv.MakeKV(context.Background(), &config.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestKVSetAndGet(t *testing.T) {
	t.Parallel()
	store := makeTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "testkey", []byte("testvalue")))

	val, err := store.Get(ctx, "testkey")
	require.NoError(t, err)
	assert.Equal(t, "testvalue", string(val))
}

func TestKVGetNonexistent(t *testing.T) {
	t.Parallel()
	store := makeTestKV(t)

	_, err := store.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestKVDelete(t *testing.T) {
	t.Parallel()
	store := makeTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "testkey", []byte("testvalue")))
	require.NoError(t, store.Delete(ctx, "testkey"))

	_, err := store.Get(ctx, "testkey")
	assert.Error(t, err)
}

func TestKVOverwrite(t *testing.T) {
	t.Parallel()
	store := makeTestKV(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "testkey", []byte("first")))
	require.NoError(t, store.Set(ctx, "testkey", []byte("second")))

	val, err := store.Get(ctx, "testkey")
	require.NoError(t, err)
	assert.Equal(t, "second", string(val))
}
