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

// Package xlate implements the bidirectional MIDI 1.0 <-> MIDI 2.0
// translator: the Min-Center-Max resolution upscaling law, its
// shift-based downscaling inverse, and per-message-class conversion
// including SysEx7 fragmentation. The scaling functions are pure
// functions of their inputs; translator state (see state.go) exists
// only to reassemble in-flight inbound SysEx7 streams across calls and
// is not required for single-message translation.
package xlate

// roundDiv computes round(num/den) for non-negative integers using
// only integer arithmetic (no intermediate floating point).
func roundDiv(num, den uint64) uint64 {
	return (2*num + den) / (2 * den)
}

// Upscale7To16 implements the Min-Center-Max law: 0 and 127 map to the
// exact bit-pattern extremes, 64 maps to the exact center, and all
// other values are linearly interpolated (rounded to nearest) within
// their half.
func Upscale7To16(v uint8) uint16 {
	switch {
	case v == 0:
		return 0
	case v == 64:
		return 32768
	case v >= 127:
		return 65535
	case v < 64:
		return uint16(roundDiv(uint64(v)*32767, 63))
	default:
		return uint16(32768 + roundDiv(uint64(v-64)*32767, 63))
	}
}

// Downscale16To7 is the canonical lossy reverse of Upscale7To16: a
// right shift by 9. downscale(upscale(v)) == v for all v in [0,127].
func Downscale16To7(v uint16) uint8 {
	return uint8(v >> 9)
}

// Upscale14To32 is the 14-to-32-bit analog of Upscale7To16, with
// center 0x80000000 and pivot 8192 (half of the 14-bit range).
func Upscale14To32(v uint16) uint32 {
	const pivot = 8192
	const center = 0x80000000
	switch {
	case v == 0:
		return 0
	case v == pivot:
		return center
	case v >= 0x3FFF:
		return 0xFFFFFFFF
	case v < pivot:
		return uint32(roundDiv(uint64(v)*0x7FFFFFFF, pivot-1))
	default:
		return uint32(center + roundDiv(uint64(v-pivot)*0x7FFFFFFF, pivot-1))
	}
}

// Downscale32To14 is the canonical lossy reverse of Upscale14To32: a
// right shift by 18.
func Downscale32To14(v uint32) uint16 {
	return uint16(v >> 18)
}
