// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport_test

import (
	"testing"

	"github.com/sramlab/sramrig/node"
	"github.com/sramlab/sramrig/packet"
	"github.com/sramlab/sramrig/transport"
)

func TestSimChainPingAll(t *testing.T) {
	codec := packet.NewCodec(1024)
	chain := transport.NewSim(codec, []*node.Node{
		node.New("X", 4096, codec, nil),
		node.New("Y", 4096, codec, nil),
		node.New("Z", 4096, codec, nil),
	})

	if err := chain.PowerOn(); err != nil {
		t.Fatalf("power on: %+v", err)
	}

	p := codec.New()
	p.Command = packet.PING
	p.UID = packet.BroadcastUID
	p.Options = packet.PingAll
	p, err := codec.Finalize(p)
	if err != nil {
		t.Fatalf("finalize: %+v", err)
	}
	if err := chain.Send(p); err != nil {
		t.Fatalf("send: %+v", err)
	}

	var acks []packet.Packet
	for {
		ack, err := chain.Receive(0)
		if err == transport.ErrTimedOut {
			break
		}
		if err != nil {
			t.Fatalf("receive: %+v", err)
		}
		acks = append(acks, ack)
	}

	if len(acks) != 3 {
		t.Fatalf("expected 3 acks, got %d", len(acks))
	}
	for i, want := range []string{"X", "Y", "Z"} {
		if got := packet.UIDString(acks[i].UID); got != want {
			t.Fatalf("ack %d: got uid=%q, want=%q", i, got, want)
		}
		if acks[i].PIC != uint8(i+1) {
			t.Fatalf("ack %d: got pic=%d, want=%d", i, acks[i].PIC, i+1)
		}
	}
}

func TestSimReceiveTimesOutWhenEmpty(t *testing.T) {
	codec := packet.NewCodec(16)
	chain := transport.NewSim(codec, []*node.Node{node.New("X", 64, codec, nil)})
	chain.PowerOn()

	if _, err := chain.Receive(0); err != transport.ErrTimedOut {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
}

func TestSimPowerOffRejectsTraffic(t *testing.T) {
	codec := packet.NewCodec(16)
	chain := transport.NewSim(codec, []*node.Node{node.New("X", 64, codec, nil)})

	p := codec.New()
	p.Command = packet.PING
	p.UID = packet.BroadcastUID
	p, err := codec.Finalize(p)
	if err != nil {
		t.Fatalf("finalize: %+v", err)
	}
	if err := chain.Send(p); err != transport.ErrPortOff {
		t.Fatalf("expected ErrPortOff, got %v", err)
	}
}
