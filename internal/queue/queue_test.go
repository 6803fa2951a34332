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

package queue_test

import (
	"sync"
	"testing"

	"github.com/hollowgate/umpbridge/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopFIFOOrder(t *testing.T) {
	t.Parallel()
	q := queue.New[int](4)
	require.True(t, q.Push(1))
	require.True(t, q.Push(2))
	require.True(t, q.Push(3))

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestPushRejectsWhenFull(t *testing.T) {
	t.Parallel()
	q := queue.New[int](2)
	assert.True(t, q.Push(1))
	assert.True(t, q.Push(2))
	assert.False(t, q.Push(3))
	assert.Equal(t, 2, q.Len())
}

func TestPopOnEmptyReturnsFalse(t *testing.T) {
	t.Parallel()
	q := queue.New[string](4)
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestDefaultCapacityAppliedForNonPositive(t *testing.T) {
	t.Parallel()
	q := queue.New[int](0)
	assert.Equal(t, queue.DefaultCapacity, q.Cap())
}

func TestWrapsAroundAfterDrain(t *testing.T) {
	t.Parallel()
	q := queue.New[int](2)
	require.True(t, q.Push(1))
	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.True(t, q.Push(2))
	require.True(t, q.Push(3))
	assert.False(t, q.Push(4))

	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestConcurrentProducersSingleConsumer(t *testing.T) {
	t.Parallel()
	q := queue.New[int](queue.DefaultCapacity)
	var wg sync.WaitGroup
	const producers = 8
	const perProducer = 50
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Push(j)
			}
		}()
	}
	wg.Wait()

	total := 0
	for {
		_, ok := q.Pop()
		if !ok {
			break
		}
		total++
	}
	assert.LessOrEqual(t, total, queue.DefaultCapacity)
	assert.Greater(t, total, 0)
}
