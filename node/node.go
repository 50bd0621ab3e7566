// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package node implements the per-device forwarding state machine that
// runs identically on every microcontroller in a chain: receive one
// packet, route or execute it, forward or reply. It is single-threaded
// and cooperative, mirroring the embedded runtime's two-DMA-buffer
// design (see Node.HandleUpstream / Node.HandleDownstream): all of the
// package's exported surface is meant to be called from one goroutine,
// exactly as the real firmware drives it from one main loop.
package node // import "github.com/sramlab/sramrig/node"

import (
	"github.com/sramlab/sramrig/packet"
)

// Direction identifies which of a node's two physical links an outgoing
// packet should go out on.
type Direction int

const (
	// Upstream is the direction toward the station.
	Upstream Direction = iota
	// Downstream is the direction away from the station.
	Downstream
)

func (d Direction) String() string {
	if d == Upstream {
		return "upstream"
	}
	return "downstream"
}

// Outgoing is one packet a Node wants transmitted, and on which link.
type Outgoing struct {
	Packet    packet.Packet
	Direction Direction
}

// Node is one device's forwarding state machine. It owns an SRAM bank,
// a sensor snapshot, and the staging/output regions used by LOAD/EXEC/RETR.
// A Node never initiates traffic: it only reacts to packets delivered by
// HandleUpstream (commands flowing down the chain) and HandleDownstream
// (responses flowing back up, bucket-brigaded without inspection).
type Node struct {
	UID      [packet.UIDSize]byte
	SRAMSize int

	codec *packet.Codec
	sram  *SRAM

	sensors Sensors

	interp        Interpreter
	sourceStaging []byte
	output        []byte
}

// New creates a Node identified by uid, with an SRAM bank of sramSize
// bytes addressed in codec.D-byte blocks. The interpreter is opaque to
// the protocol; pass NullInterpreter{} when none is wired.
func New(uid string, sramSize int, codec *packet.Codec, interp Interpreter) *Node {
	if interp == nil {
		interp = NullInterpreter{}
	}
	return &Node{
		UID:      packet.UID(uid),
		SRAMSize: sramSize,
		codec:    codec,
		sram:     NewSRAM(sramSize, codec.D),
		interp:   interp,
		output:   make([]byte, 0, codec.D),
	}
}

// matches reports whether uid addresses this node directly or via the
// broadcast sentinel.
func (n *Node) matches(uid [packet.UIDSize]byte) bool {
	return uid == n.UID || packet.IsBroadcast(uid)
}

// finalize re-computes the checksum of p against this node's codec. Every
// packet a node replies with or forwards from its upstream buffer goes
// through this, because PIC (and sometimes other fields) changed since the
// packet arrived; HandleDownstream's passthrough does not.
func (n *Node) finalize(p packet.Packet) packet.Packet {
	p, err := n.codec.Finalize(p)
	if err != nil {
		// A node only ever finalizes packets it itself built from its own
		// codec-sized buffers; a length mismatch here is a programming
		// error, not a runtime condition.
		panic(err)
	}
	return p
}

func (n *Node) reply(p packet.Packet, cmd packet.Command, options uint32) Outgoing {
	p.Command = cmd
	p.Options = options
	return Outgoing{Packet: n.finalize(p), Direction: Upstream}
}

func (n *Node) forward(p packet.Packet, dir Direction) Outgoing {
	return Outgoing{Packet: n.finalize(p), Direction: dir}
}
