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

// Package routererr defines the stable error kinds shared by every
// component of the router core, so callers can classify a failure
// with errors.Is regardless of which package raised it.
package routererr

import "errors"

var (
	// ErrInvalidArgument indicates a caller-supplied value violates an operation's preconditions.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState indicates an operation was invoked while its owner was in an incompatible state.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientCapacity indicates a caller-provided buffer was too small.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	// ErrQueueFull indicates the bounded routing queue has no free slots.
	ErrQueueFull = errors.New("queue full")
	// ErrUnsupportedMessageType indicates a UMP word stream's Message Type has no known size.
	ErrUnsupportedMessageType = errors.New("unsupported message type")
	// ErrNotSupported indicates a translation has no defined mapping.
	ErrNotSupported = errors.New("not supported")
	// ErrTimeout indicates an operation did not complete within its allotted time.
	ErrTimeout = errors.New("timeout")
	// ErrIoFailure indicates an underlying transport I/O operation failed.
	ErrIoFailure = errors.New("io failure")
)
