// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chain holds the station-side membership table: the live map
// of devices a Reader has discovered on its chain. It is pure data with
// no I/O, owned exclusively by the Reader goroutine that mutates it.
package chain // import "github.com/sramlab/sramrig/chain"

import (
	"errors"
	"sort"
	"time"
)

// ErrMissing is returned by Get for an unknown UID.
var ErrMissing = errors.New("chain: device not found")

// Device is one station-side record of a chain member.
type Device struct {
	UID      string
	PIC      uint8
	SRAMSize int
	LastSeen time.Time
}

// Table is the ordered-by-PIC map of known devices for one chain.
type Table struct {
	byUID map[string]*Device
}

// New returns an empty Table.
func New() *Table {
	return &Table{byUID: make(map[string]*Device)}
}

// Clear removes every device from the table.
func (t *Table) Clear() {
	t.byUID = make(map[string]*Device)
}

// Len reports how many devices are currently known.
func (t *Table) Len() int {
	return len(t.byUID)
}

// Upsert inserts or replaces the record for dev.UID.
func (t *Table) Upsert(dev Device) {
	cp := dev
	t.byUID[dev.UID] = &cp
}

// Remove drops uid from the table, if present.
func (t *Table) Remove(uid string) {
	delete(t.byUID, uid)
}

// Get returns the record for uid, or ErrMissing.
func (t *Table) Get(uid string) (Device, error) {
	dev, ok := t.byUID[uid]
	if !ok {
		return Device{}, ErrMissing
	}
	return *dev, nil
}

// List returns every known device, ordered by PIC ascending.
func (t *Table) List() []Device {
	out := make([]Device, 0, len(t.byUID))
	for _, dev := range t.byUID {
		out = append(out, *dev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PIC < out[j].PIC })
	return out
}
