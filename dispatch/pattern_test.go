// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import "testing"

func TestCommandPatternMatchesSubset(t *testing.T) {
	pattern := CommandPattern{"command": "write", "device": "X"}
	rec := CommandRecord{"command": "write", "device": "X", "offset": 2.0}
	if !pattern.matches(rec) {
		t.Fatal("expected pattern to match a record carrying extra fields")
	}
}

func TestCommandPatternRejectsMismatch(t *testing.T) {
	pattern := CommandPattern{"command": "write"}
	rec := CommandRecord{"command": "read"}
	if pattern.matches(rec) {
		t.Fatal("expected pattern not to match a different command")
	}
}

func TestCommandPatternRejectsMissingField(t *testing.T) {
	pattern := CommandPattern{"command": "write", "device": "X"}
	rec := CommandRecord{"command": "write"}
	if pattern.matches(rec) {
		t.Fatal("expected pattern not to match a record missing a required field")
	}
}

func TestByteListRejectsOutOfRange(t *testing.T) {
	rec := CommandRecord{"data": []interface{}{1.0, 300.0}}
	if _, err := byteList(rec, "data"); err == nil {
		t.Fatal("expected an error for an out-of-range byte value")
	}
}

func TestByteListDecodesValidList(t *testing.T) {
	rec := CommandRecord{"data": []interface{}{1.0, 2.0, 255.0}}
	got, err := byteList(rec, "data")
	if err != nil {
		t.Fatalf("byteList: %+v", err)
	}
	want := []byte{1, 2, 255}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got=%d, want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got=%d, want=%d", i, got[i], want[i])
		}
	}
}
