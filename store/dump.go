// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import "context"

// IsDumpComplete reports whether the most recent sample run for uid
// covers every block of a device with sramSize bytes in blockSize-byte
// blocks — the write-invert precondition from the source's dump
// manifest check, made concrete as a block-count comparison rather than
// a separate completeness flag.
func (db *DB) IsDumpComplete(ctx context.Context, uid string, sramSize, blockSize int) (bool, error) {
	want := sramSize / blockSize
	got, err := db.ReferenceBlockCount(ctx, uid)
	if err != nil {
		return false, err
	}
	return got >= want, nil
}
