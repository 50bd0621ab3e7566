// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"github.com/sramlab/sramrig/packet"
)

// HandleUpstream processes one packet arrived on the node's upstream
// buffer (a command travelling down the chain from the station). It
// returns the packet(s) the node wants transmitted, and on which link.
//
// PIC is incremented for every packet that reaches this point, corrupt
// or not — the hop happened regardless of what the payload turned out to
// say. The checksum is verified against the packet as received, before
// that increment, since that is the form the sender signed.
func (n *Node) HandleUpstream(p packet.Packet) []Outgoing {
	valid := n.codec.Verify(p)

	hop := p.Clone()
	hop.PIC++

	if !valid {
		errPkt := hop.Clone()
		return []Outgoing{n.reply(errPkt, packet.ERR, packet.ErrChecksumMismatch)}
	}

	switch hop.Command {
	case packet.PING:
		return n.handlePing(hop)
	case packet.READ:
		return n.handleBlockRead(hop)
	case packet.WRITE:
		return n.handleBlockWrite(hop)
	case packet.SENSORS:
		return n.handleSensors(hop)
	case packet.LOAD:
		return n.handleLoad(hop)
	case packet.EXEC:
		return n.handleExec(hop)
	case packet.RETR:
		return n.handleRetr(hop)
	default: // ERR or unknown: station-bound, reflect upstream unchanged.
		return []Outgoing{n.forward(hop, Upstream)}
	}
}

// HandleDownstream is the bucket-brigade side channel: a full packet
// arrived on the downstream buffer (a response bubbling up from below)
// gets retransmitted upstream without inspection, and without mutating
// anything but its transit — this is why forward is not called: there is
// nothing to re-finalize, the packet already carries its originator's
// checksum and PIC untouched.
func (n *Node) HandleDownstream(p packet.Packet) Outgoing {
	return Outgoing{Packet: p, Direction: Upstream}
}

func (n *Node) handlePing(p packet.Packet) []Outgoing {
	switch p.Options {
	case packet.PingAll:
		ack := p.Clone()
		ack.UID = n.UID
		announce := n.reply(ack, packet.ACK, uint32(n.SRAMSize))
		relay := n.forward(p, Downstream)
		return []Outgoing{announce, relay}
	default: // PingOwn
		if n.matches(p.UID) {
			return []Outgoing{n.reply(p, packet.ACK, uint32(n.SRAMSize))}
		}
		return []Outgoing{n.forward(p, Downstream)}
	}
}

func (n *Node) handleBlockRead(p packet.Packet) []Outgoing {
	if !n.matches(p.UID) {
		return []Outgoing{n.forward(p, Downstream)}
	}
	block := make([]byte, n.codec.D)
	if err := n.sram.ReadBlock(int(p.Options), block); err != nil {
		return []Outgoing{n.reply(p, packet.ERR, packet.ErrOutOfRange)}
	}
	p.Data = block
	return []Outgoing{n.reply(p, packet.ACK, p.Options)}
}

func (n *Node) handleBlockWrite(p packet.Packet) []Outgoing {
	if !n.matches(p.UID) {
		return []Outgoing{n.forward(p, Downstream)}
	}
	if err := n.sram.WriteBlock(int(p.Options), p.Data); err != nil {
		return []Outgoing{n.reply(p, packet.ERR, packet.ErrOutOfRange)}
	}
	return []Outgoing{n.reply(p, packet.ACK, p.Options)}
}

func (n *Node) handleSensors(p packet.Packet) []Outgoing {
	if !n.matches(p.UID) {
		return []Outgoing{n.forward(p, Downstream)}
	}
	data := make([]byte, n.codec.D)
	n.sensors.Encode(data, p.Options)
	p.Data = data
	return []Outgoing{n.reply(p, packet.ACK, p.Options)}
}

func (n *Node) handleLoad(p packet.Packet) []Outgoing {
	if !n.matches(p.UID) {
		return []Outgoing{n.forward(p, Downstream)}
	}
	off := int(p.Options) * n.codec.D
	if need := off + len(p.Data); need > len(n.sourceStaging) {
		grown := make([]byte, need)
		copy(grown, n.sourceStaging)
		n.sourceStaging = grown
	}
	copy(n.sourceStaging[off:], p.Data)
	return []Outgoing{n.reply(p, packet.ACK, p.Options)}
}

func (n *Node) handleExec(p packet.Packet) []Outgoing {
	if !n.matches(p.UID) {
		return []Outgoing{n.forward(p, Downstream)}
	}
	reset := p.Options == 1
	code := -1
	if err := n.interp.Load(n.sourceStaging); err == nil {
		code, err = n.interp.Exec(reset)
		if err != nil {
			code = -1
		}
	}
	n.output = append(n.output[:0], n.interp.Output()...)
	return []Outgoing{n.reply(p, packet.ACK, uint32(int32(code)))}
}

// handleRetr replies with one D-byte block of the interpreter's output
// region, always full-length on the wire (the codec requires it), but
// reports how many of those bytes are real output in the ACK's Options
// field rather than echoing the block index back: a count of D means
// "there may be more," anything less — including zero, once off has run
// past the end of the output — means this is the last block.
func (n *Node) handleRetr(p packet.Packet) []Outgoing {
	if !n.matches(p.UID) {
		return []Outgoing{n.forward(p, Downstream)}
	}
	block := make([]byte, n.codec.D)
	off := int(p.Options) * n.codec.D
	valid := 0
	if off < len(n.output) {
		end := off + n.codec.D
		if end > len(n.output) {
			end = len(n.output)
		}
		valid = end - off
		copy(block, n.output[off:end])
	}
	p.Data = block
	return []Outgoing{n.reply(p, packet.ACK, uint32(valid))}
}
