// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"encoding/binary"
	"fmt"

	"github.com/sramlab/sramrig/internal/crc16"
	"golang.org/x/xerrors"
)

// headerSize is Command(1) + PIC(1) + Options(4) + UID(25).
const headerSize = 1 + 1 + 4 + UIDSize

// trailerSize is the Checksum field.
const trailerSize = 2

// ErrMalformedLength is returned by Decode when the input is not exactly
// the codec's packet size.
var ErrMalformedLength = xerrors.New("packet: malformed length")

// ErrUncrafted is returned by Encode when the packet has not been
// through Finalize.
var ErrUncrafted = xerrors.New("packet: uncrafted packet")

// Codec encodes and decodes packets of a fixed data length D, the
// build-time SRAM-block size for the deployment (1024 on Nucleo-class
// boards, 512 on Discovery-class boards, per the platform's deployment
// notes).
type Codec struct {
	D int
}

// NewCodec returns a Codec for a payload size of d bytes.
func NewCodec(d int) *Codec {
	return &Codec{D: d}
}

// Size returns the total wire size of a packet: 6 + 25 + D + 2.
func (c *Codec) Size() int {
	return headerSize + c.D + trailerSize
}

// New returns a zero-value packet sized for this codec, ready to be
// filled in and Finalized.
func (c *Codec) New() Packet {
	return Packet{Data: make([]byte, c.D)}
}

// Finalize computes and installs the packet's checksum over its
// canonical form (checksum field zeroed) and marks it as ready to
// transmit. Finalize is idempotent.
func (c *Codec) Finalize(p Packet) (Packet, error) {
	if len(p.Data) != c.D {
		return Packet{}, xerrors.Errorf("packet: data length %d != D=%d", len(p.Data), c.D)
	}
	p.Checksum = 0
	p.Checksum = c.checksum(p)
	p.crafted = true
	return p, nil
}

// checksum computes the CRC-16 over the canonical wire form of p (the
// Checksum field is never part of its own input).
func (c *Codec) checksum(p Packet) uint16 {
	h := crc16.New(nil)
	var hdr [headerSize]byte
	hdr[0] = byte(p.Command)
	hdr[1] = p.PIC
	binary.LittleEndian.PutUint32(hdr[2:6], p.Options)
	copy(hdr[6:6+UIDSize], p.UID[:])
	_, _ = h.Write(hdr[:])
	_, _ = h.Write(p.Data)
	return h.Sum16()
}

// Encode serializes a Finalized packet to its wire representation.
func (c *Codec) Encode(p Packet) ([]byte, error) {
	if !p.crafted {
		return nil, ErrUncrafted
	}
	if len(p.Data) != c.D {
		return nil, xerrors.Errorf("packet: data length %d != D=%d", len(p.Data), c.D)
	}

	buf := make([]byte, c.Size())
	buf[0] = byte(p.Command)
	buf[1] = p.PIC
	binary.LittleEndian.PutUint32(buf[2:6], p.Options)
	copy(buf[6:6+UIDSize], p.UID[:])
	copy(buf[headerSize:headerSize+c.D], p.Data)
	binary.LittleEndian.PutUint16(buf[headerSize+c.D:], p.Checksum)

	return buf, nil
}

// Decode parses the wire representation of one packet. It does not
// itself validate the checksum; callers use Verify for that, since a
// corrupt packet is still a meaningful decode result (the caller needs
// the PIC and UID to know where to send the resulting ERR).
func (c *Codec) Decode(b []byte) (Packet, error) {
	if len(b) != c.Size() {
		return Packet{}, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedLength, len(b), c.Size())
	}

	p := Packet{
		Command: Command(b[0]),
		PIC:     b[1],
		Options: binary.LittleEndian.Uint32(b[2:6]),
		Data:    append([]byte(nil), b[headerSize:headerSize+c.D]...),
		crafted: true,
	}
	copy(p.UID[:], b[6:6+UIDSize])
	p.Checksum = binary.LittleEndian.Uint16(b[headerSize+c.D:])

	return p, nil
}

// Verify reports whether p's checksum matches its canonical form.
func (c *Codec) Verify(p Packet) bool {
	return p.Checksum == c.checksum(p)
}
