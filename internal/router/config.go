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

package router

import (
	"context"
	"encoding/json"

	"github.com/hollowgate/umpbridge/internal/midi1"
	"github.com/hollowgate/umpbridge/internal/routererr"
	"github.com/hollowgate/umpbridge/internal/ump"
)

// Filter is a per-source admission rule, applied before destination
// expansion.
type Filter struct {
	Enabled            bool
	ChannelMask        uint16
	BlockActiveSensing bool
	BlockClock         bool
}

// Pass reports whether msg may proceed past this filter. A disabled
// filter always passes.
func (f Filter) Pass(msg Packet) bool {
	if !f.Enabled {
		return true
	}
	if msg.Format == FormatMIDI2 {
		if msg.MIDI2.Type == ump.MTSystem && msg.MIDI2.NumWords >= 1 {
			switch byte((msg.MIDI2.Words[0] >> 16) & 0xFF) {
			case 0xFE:
				if f.BlockActiveSensing {
					return false
				}
			case 0xF8:
				if f.BlockClock {
					return false
				}
			}
			return true
		}
		status, channel, _, _, ok := ump.ChannelVoiceFields(msg.MIDI2)
		if ok && status >= ump.StatusNoteOff && status <= ump.StatusPitchBend {
			return f.ChannelMask&(1<<channel) != 0
		}
		return true
	}
	switch msg.MIDI1.Status {
	case 0xFE:
		if f.BlockActiveSensing {
			return false
		}
	case 0xF8:
		if f.BlockClock {
			return false
		}
	}
	if msg.MIDI1.Class == midi1.ClassChannelVoice {
		return f.ChannelMask&(1<<msg.MIDI1.Channel) != 0
	}
	return true
}

// Config is the router's routing matrix, per-source filters, and
// global flags. It is immutable once published: mutators build and
// install a fresh Config rather than editing one in place, so the
// dispatcher can read a stable snapshot without locking.
type Config struct {
	N             int
	Route         [][]bool
	Filters       []Filter
	FormatPrefs   []FormatPreference
	AutoTranslate bool
	MergeInputs   bool
	DefaultGroup  uint8
}

// FormatPreference describes a destination transport's protocol
// family requirement for auto-translation purposes.
type FormatPreference struct {
	// Format is the preferred family when AcceptsEither is false.
	Format        Format
	AcceptsEither bool
}

// defaultFormatPreferences mirrors the four fixed transports this
// router targets: serial DIN (MIDI1-only), USB MIDI (either), and the
// two Network-MIDI2 transports (MIDI2-only). A Router built with a
// different N, or one whose transports don't follow that ordering,
// should call SetFormatPreference to override these.
func defaultFormatPreferences(n int) []FormatPreference {
	prefs := make([]FormatPreference, n)
	for i := range prefs {
		prefs[i] = FormatPreference{AcceptsEither: true}
	}
	if n > int(TransportSerialDIN) {
		prefs[TransportSerialDIN] = FormatPreference{Format: FormatMIDI1}
	}
	if n > int(TransportUSBMIDI) {
		prefs[TransportUSBMIDI] = FormatPreference{AcceptsEither: true}
	}
	if n > int(TransportNetworkMIDI2A) {
		prefs[TransportNetworkMIDI2A] = FormatPreference{Format: FormatMIDI2}
	}
	if n > int(TransportNetworkMIDI2B) {
		prefs[TransportNetworkMIDI2B] = FormatPreference{Format: FormatMIDI2}
	}
	return prefs
}

// NewConfig builds an empty N x N configuration: no routes enabled,
// all filters disabled, auto-translate on, merge off, and format
// preferences defaulted per defaultFormatPreferences.
func NewConfig(n int) *Config {
	route := make([][]bool, n)
	for i := range route {
		route[i] = make([]bool, n)
	}
	return &Config{
		N:             n,
		Route:         route,
		Filters:       make([]Filter, n),
		FormatPrefs:   defaultFormatPreferences(n),
		AutoTranslate: true,
	}
}

// clone returns a deep copy suitable for copy-on-write mutation.
func (c *Config) clone() *Config {
	route := make([][]bool, c.N)
	for i := range route {
		route[i] = append([]bool(nil), c.Route[i]...)
	}
	return &Config{
		N:             c.N,
		Route:         route,
		Filters:       append([]Filter(nil), c.Filters...),
		FormatPrefs:   append([]FormatPreference(nil), c.FormatPrefs...),
		AutoTranslate: c.AutoTranslate,
		MergeInputs:   c.MergeInputs,
		DefaultGroup:  c.DefaultGroup,
	}
}

func (c *Config) validTransport(id TransportID) bool {
	return int(id) >= 0 && int(id) < c.N
}

// configWire is the JSON-serializable shape persisted via ConfigStore.
// encoding/json is used here in place of a third-party codec: see
// DESIGN.md's tinylib/msgp entry for why tinylib/msgp (the
// corpus's only struct<->bytes codec) is not a fit for a hand-built,
// non-generated implementation.
type configWire struct {
	N             int                `json:"n"`
	Route         [][]bool           `json:"route"`
	Filters       []Filter           `json:"filters"`
	FormatPrefs   []FormatPreference `json:"format_prefs"`
	AutoTranslate bool               `json:"auto_translate"`
	MergeInputs   bool               `json:"merge_inputs"`
	DefaultGroup  uint8              `json:"default_group"`
}

func (c *Config) marshal() ([]byte, error) {
	return json.Marshal(configWire{
		N: c.N, Route: c.Route, Filters: c.Filters, FormatPrefs: c.FormatPrefs,
		AutoTranslate: c.AutoTranslate, MergeInputs: c.MergeInputs, DefaultGroup: c.DefaultGroup,
	})
}

func unmarshalConfig(data []byte) (*Config, error) {
	var w configWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.N <= 0 || len(w.Route) != w.N || len(w.Filters) != w.N {
		return nil, routererr.ErrInvalidArgument
	}
	formatPrefs := w.FormatPrefs
	if len(formatPrefs) != w.N {
		formatPrefs = defaultFormatPreferences(w.N)
	}
	return &Config{
		N: w.N, Route: w.Route, Filters: w.Filters, FormatPrefs: formatPrefs,
		AutoTranslate: w.AutoTranslate, MergeInputs: w.MergeInputs, DefaultGroup: w.DefaultGroup,
	}, nil
}

// SaveConfig persists the router's current configuration snapshot to
// store under a fixed key.
func (r *Router) SaveConfig(ctx context.Context, store ConfigStore) error {
	cfg := r.snapshot()
	data, err := cfg.marshal()
	if err != nil {
		return err
	}
	return store.Set(ctx, configStoreKey, data)
}

// LoadConfig replaces the router's configuration with the blob
// previously written by SaveConfig.
func (r *Router) LoadConfig(ctx context.Context, store ConfigStore) error {
	data, err := store.Get(ctx, configStoreKey)
	if err != nil {
		return err
	}
	cfg, err := unmarshalConfig(data)
	if err != nil {
		return err
	}
	if cfg.N != r.n {
		return routererr.ErrInvalidArgument
	}
	r.publish(cfg)
	return nil
}

// ResetConfig replaces the current configuration with an empty one of
// the same size.
func (r *Router) ResetConfig() {
	r.publish(NewConfig(r.n))
}
