// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import "fmt"

// SRAM models a device's memory region as a flat byte slice addressed in
// fixed-size blocks. Real firmware reads/writes the physical SRAM bank
// directly; the simulator and tests use SRAM as the stand-in.
type SRAM struct {
	data      []byte
	blockSize int
}

// NewSRAM allocates an SRAM bank of size bytes, addressed in blockSize
// chunks.
func NewSRAM(size, blockSize int) *SRAM {
	return &SRAM{data: make([]byte, size), blockSize: blockSize}
}

// Blocks returns the number of blockSize-d blocks the bank holds.
func (s *SRAM) Blocks() int {
	return len(s.data) / s.blockSize
}

// ReadBlock copies the offset-th block into dst, which must be exactly
// blockSize bytes.
func (s *SRAM) ReadBlock(offset int, dst []byte) error {
	start, end, err := s.bounds(offset)
	if err != nil {
		return err
	}
	copy(dst, s.data[start:end])
	return nil
}

// WriteBlock copies src, which must be exactly blockSize bytes, into the
// offset-th block.
func (s *SRAM) WriteBlock(offset int, src []byte) error {
	start, end, err := s.bounds(offset)
	if err != nil {
		return err
	}
	copy(s.data[start:end], src)
	return nil
}

func (s *SRAM) bounds(offset int) (start, end int, err error) {
	if offset < 0 || offset >= s.Blocks() {
		return 0, 0, fmt.Errorf("node: block offset %d out of range [0,%d)", offset, s.Blocks())
	}
	start = offset * s.blockSize
	return start, start + s.blockSize, nil
}
