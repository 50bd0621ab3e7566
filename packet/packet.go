// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package packet implements the fixed-size wire packet exchanged between
// the station and the devices of a chain. It knows nothing about serial
// I/O or chain topology: it only encodes, decodes and checksums one
// packet at a time.
package packet // import "github.com/sramlab/sramrig/packet"

import "fmt"

// UIDSize is the number of bytes reserved for a device UID on the wire.
const UIDSize = 25

// Command is the one-byte operation code carried by every packet.
type Command uint8

// Command codes, per the wire protocol.
const (
	ACK     Command = 1
	PING    Command = 2
	READ    Command = 3
	WRITE   Command = 4
	SENSORS Command = 5
	LOAD    Command = 6
	EXEC    Command = 7
	RETR    Command = 8
	ERR     Command = 255
)

func (c Command) String() string {
	switch c {
	case ACK:
		return "ACK"
	case PING:
		return "PING"
	case READ:
		return "READ"
	case WRITE:
		return "WRITE"
	case SENSORS:
		return "SENSORS"
	case LOAD:
		return "LOAD"
	case EXEC:
		return "EXEC"
	case RETR:
		return "RETR"
	case ERR:
		return "ERR"
	default:
		return fmt.Sprintf("Command(%d)", uint8(c))
	}
}

// Options values for PING.
const (
	PingOwn uint32 = 0
	PingAll uint32 = 1
)

// Options values for SENSORS.
const (
	SensorsAll  uint32 = 0
	SensorsTemp uint32 = 1
	SensorsVdd  uint32 = 2
)

// Options values for ERR. ErrChecksumMismatch is the only code spec'd on
// the wire; ErrOutOfRange is this implementation's extension, covering
// the "extensible" note in the ERR options documentation for node-side
// faults that aren't checksum corruption (e.g. a block offset outside
// the device's SRAM).
const (
	ErrChecksumMismatch uint32 = 1
	ErrOutOfRange       uint32 = 2
)

// BroadcastUID is the distinguished UID that every node treats as
// matching its own identity for PING/ALL.
var BroadcastUID = [UIDSize]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff,
}

// IsBroadcast reports whether uid is the broadcast sentinel.
func IsBroadcast(uid [UIDSize]byte) bool {
	return uid == BroadcastUID
}

// UID encodes a device identity string into the fixed 25-byte wire field,
// null-padding short names. A name of exactly UIDSize bytes fills the
// field with no terminator (UIDString reads it back whole). It panics if
// s is longer than UIDSize bytes, since a caller passing an over-long UID
// is a programming error, not a runtime condition.
func UID(s string) [UIDSize]byte {
	if len(s) > UIDSize {
		panic(fmt.Sprintf("packet: UID %q longer than %d bytes", s, UIDSize))
	}
	var uid [UIDSize]byte
	copy(uid[:], s)
	return uid
}

// UIDString decodes the null-terminated ASCII string from a wire UID field.
func UIDString(uid [UIDSize]byte) string {
	for i, b := range uid {
		if b == 0 {
			return string(uid[:i])
		}
	}
	return string(uid[:])
}

// Packet is one fixed-size exchange unit of the chain protocol. Data is
// always exactly the codec's D bytes once Finalized; a Packet constructed
// by hand must go through a Codec's New/Finalize before it may be sent.
type Packet struct {
	Command  Command
	PIC      uint8
	Options  uint32
	UID      [UIDSize]byte
	Data     []byte
	Checksum uint16

	crafted bool
}

// Clone returns a deep copy of p, so hop-by-hop mutation of the forwarded
// packet never aliases the buffer the caller is still holding.
func (p Packet) Clone() Packet {
	cp := p
	cp.Data = append([]byte(nil), p.Data...)
	return cp
}
