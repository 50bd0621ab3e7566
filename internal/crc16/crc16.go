// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crc16 implements the CRC-16 variant used by the chain wire
// protocol: polynomial 0xA001 (reflected), initial value 0, byte-at-a-time
// table-driven. It mirrors the shape of hash.Hash so it composes with
// encoding/decoding helpers the same way a stdlib checksum would.
package crc16

import "hash"

// Hash16 is the common interface implemented by all CRC-16 checksums.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

const poly = 0xA001

var table = makeTable(poly)

func makeTable(poly uint16) [256]uint16 {
	var t [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i)
		for j := 0; j < 8; j++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		t[i] = crc
	}
	return t
}

type digest struct {
	crc uint16
}

// New returns a new Hash16 computing the CRC-16 checksum. tab is accepted
// for symmetry with table-taking hash constructors but is ignored: every
// Hash16 uses the table for the protocol's own polynomial, nil or not.
func New(tab *[256]uint16) Hash16 {
	d := &digest{}
	d.Reset()
	return d
}

func (d *digest) Reset() { d.crc = 0 }

func (d *digest) Size() int      { return 2 }
func (d *digest) BlockSize() int { return 1 }

func (d *digest) Write(p []byte) (int, error) {
	crc := d.crc
	for _, b := range p {
		crc = table[byte(crc)^b] ^ (crc >> 8)
	}
	d.crc = crc
	return len(p), nil
}

func (d *digest) Sum16() uint16 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	v := d.Sum16()
	return append(in, byte(v), byte(v>>8))
}
