// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"time"

	"github.com/sramlab/sramrig/node"
	"github.com/sramlab/sramrig/packet"
)

// Sim is an in-process Transport over a chain of Nodes connected head to
// tail, the way the CLI's simulate command and the reader's own test
// suite exercise chain behavior without a real UART link. Send walks the
// chain synchronously to completion; Receive just drains whatever
// Send produced.
type Sim struct {
	codec   *packet.Codec
	nodes   []*node.Node
	queue   []packet.Packet
	powered bool
}

// NewSim wires nodes into a chain in the given order: nodes[0] is the
// head, directly reachable from the station.
func NewSim(codec *packet.Codec, nodes []*node.Node) *Sim {
	return &Sim{codec: codec, nodes: nodes}
}

func (s *Sim) PowerOn() error {
	s.powered = true
	return nil
}

func (s *Sim) PowerOff() error {
	s.powered = false
	s.queue = nil
	return nil
}

func (s *Sim) Powered() bool { return s.powered }

// Send drives p down the chain to completion, queuing every packet that
// bubbles back up to the station for a later Receive.
func (s *Sim) Send(p packet.Packet) error {
	if !s.powered {
		return ErrPortOff
	}
	s.deliver(p, 0)
	return nil
}

// Receive pops the oldest queued response. deadline is accepted for
// interface compatibility but never actually waited out: the whole chain
// already ran synchronously inside Send.
func (s *Sim) Receive(deadline time.Duration) (packet.Packet, error) {
	if !s.powered {
		return packet.Packet{}, ErrPortOff
	}
	if len(s.queue) == 0 {
		return packet.Packet{}, ErrTimedOut
	}
	p := s.queue[0]
	s.queue = s.queue[1:]
	return p, nil
}

func (s *Sim) Close() error {
	s.queue = nil
	return nil
}

// deliver hands p to node idx's upstream handler and routes whatever it
// produces: downstream results continue to idx+1, upstream results bubble
// back through every preceding node's passthrough before reaching the
// station queue. A downstream packet with no node left to receive it
// simply has nothing to answer it, matching an open end of a real chain.
func (s *Sim) deliver(p packet.Packet, idx int) {
	if idx >= len(s.nodes) {
		return
	}
	for _, out := range s.nodes[idx].HandleUpstream(p) {
		switch out.Direction {
		case node.Downstream:
			s.deliver(out.Packet, idx+1)
		case node.Upstream:
			s.bubbleUp(out.Packet, idx)
		}
	}
}

// bubbleUp walks a response from node idx back to the station through
// every preceding node's HandleDownstream passthrough, then queues it.
func (s *Sim) bubbleUp(p packet.Packet, idx int) {
	for i := idx - 1; i >= 0; i-- {
		p = s.nodes[i].HandleDownstream(p).Packet
	}
	s.queue = append(s.queue, p)
}
