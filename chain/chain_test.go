// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain_test

import (
	"testing"
	"time"

	"github.com/sramlab/sramrig/chain"
)

func TestUpsertAndList(t *testing.T) {
	tbl := chain.New()
	tbl.Upsert(chain.Device{UID: "Z", PIC: 3, SRAMSize: 4096, LastSeen: time.Now()})
	tbl.Upsert(chain.Device{UID: "X", PIC: 1, SRAMSize: 4096, LastSeen: time.Now()})
	tbl.Upsert(chain.Device{UID: "Y", PIC: 2, SRAMSize: 4096, LastSeen: time.Now()})

	got := tbl.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(got))
	}
	for i, want := range []string{"X", "Y", "Z"} {
		if got[i].UID != want {
			t.Fatalf("device %d: got=%q, want=%q", i, got[i].UID, want)
		}
	}
}

func TestGetMissing(t *testing.T) {
	tbl := chain.New()
	if _, err := tbl.Get("nope"); err != chain.ErrMissing {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	tbl := chain.New()
	tbl.Upsert(chain.Device{UID: "X", PIC: 1})
	tbl.Remove("X")
	if tbl.Len() != 0 {
		t.Fatalf("expected empty table after remove, got %d", tbl.Len())
	}

	tbl.Upsert(chain.Device{UID: "X", PIC: 1})
	tbl.Upsert(chain.Device{UID: "Y", PIC: 2})
	tbl.Clear()
	if tbl.Len() != 0 {
		t.Fatalf("expected empty table after clear, got %d", tbl.Len())
	}
}

func TestUpsertReplaces(t *testing.T) {
	tbl := chain.New()
	tbl.Upsert(chain.Device{UID: "X", PIC: 1, SRAMSize: 1024})
	tbl.Upsert(chain.Device{UID: "X", PIC: 1, SRAMSize: 2048})

	dev, err := tbl.Get("X")
	if err != nil {
		t.Fatalf("get: %+v", err)
	}
	if dev.SRAMSize != 2048 {
		t.Fatalf("expected upsert to replace, got sram_size=%d", dev.SRAMSize)
	}
}
