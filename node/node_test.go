// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node_test

import (
	"bytes"
	"testing"

	"github.com/sramlab/sramrig/node"
	"github.com/sramlab/sramrig/packet"
)

func craftPingAll(t *testing.T, codec *packet.Codec) packet.Packet {
	t.Helper()
	p := codec.New()
	p.Command = packet.PING
	p.PIC = 0
	p.UID = packet.BroadcastUID
	p.Options = packet.PingAll
	p, err := codec.Finalize(p)
	if err != nil {
		t.Fatalf("could not finalize PING/ALL: %+v", err)
	}
	return p
}

// Scenario 1: single-device ping.
func TestSingleDevicePing(t *testing.T) {
	codec := packet.NewCodec(1024)
	n := node.New("AAAAAAAAAAAAAAAAAAAAAAAAA", 16384, codec, nil)

	out := n.HandleUpstream(craftPingAll(t, codec))
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing packets (ack + relay), got %d", len(out))
	}

	ack := out[0]
	if ack.Direction != node.Upstream {
		t.Fatalf("expected ack upstream, got %v", ack.Direction)
	}
	if ack.Packet.Command != packet.ACK {
		t.Fatalf("expected ACK, got %v", ack.Packet.Command)
	}
	if got, want := packet.UIDString(ack.Packet.UID), "AAAAAAAAAAAAAAAAAAAAAAAAA"; got != want {
		t.Fatalf("unexpected ack UID: got=%q, want=%q", got, want)
	}
	if ack.Packet.PIC != 1 {
		t.Fatalf("expected pic=1, got %d", ack.Packet.PIC)
	}
	if ack.Packet.Options != 16384 {
		t.Fatalf("expected options=16384, got %d", ack.Packet.Options)
	}
	if !codec.Verify(ack.Packet) {
		t.Fatal("ack packet does not verify")
	}
}

// Scenario 2: three-device ping with broadcast.
func TestThreeDevicePingOrder(t *testing.T) {
	codec := packet.NewCodec(1024)
	x := node.New("X", 4096, codec, nil)
	y := node.New("Y", 4096, codec, nil)
	z := node.New("Z", 4096, codec, nil)

	var stationSeen []packet.Packet
	collect := func(outs []node.Outgoing, from *node.Node, downstream func(packet.Packet)) {
		for _, o := range outs {
			switch o.Direction {
			case node.Upstream:
				stationSeen = append(stationSeen, o.Packet)
			case node.Downstream:
				downstream(o.Packet)
			}
		}
	}

	ping := craftPingAll(t, codec)
	collect(x.HandleUpstream(ping), x, func(p packet.Packet) {
		collect(y.HandleUpstream(p), y, func(p packet.Packet) {
			collect(z.HandleUpstream(p), z, func(packet.Packet) {})
		})
	})

	if len(stationSeen) != 3 {
		t.Fatalf("expected 3 acks at the station, got %d", len(stationSeen))
	}
	for i, want := range []string{"X", "Y", "Z"} {
		got := stationSeen[i]
		if got.PIC != uint8(i+1) {
			t.Fatalf("ack %d: expected pic=%d, got=%d", i, i+1, got.PIC)
		}
		if packet.UIDString(got.UID) != want {
			t.Fatalf("ack %d: expected uid=%q, got=%q", i, want, packet.UIDString(got.UID))
		}
	}
}

// Scenario 3: CRC mismatch upstream.
func TestCRCMismatchProducesErr(t *testing.T) {
	codec := packet.NewCodec(1024)
	y := node.New("Y", 4096, codec, nil)

	p := codec.New()
	p.Command = packet.READ
	p.UID = packet.UID("Y")
	p.Options = 0
	p, err := codec.Finalize(p)
	if err != nil {
		t.Fatalf("finalize: %+v", err)
	}
	p.Checksum ^= 0xffff // corrupt it

	out := y.HandleUpstream(p)
	if len(out) != 1 {
		t.Fatalf("expected exactly one outgoing packet, got %d", len(out))
	}
	if out[0].Direction != node.Upstream {
		t.Fatalf("expected ERR upstream, got %v", out[0].Direction)
	}
	if out[0].Packet.Command != packet.ERR {
		t.Fatalf("expected ERR, got %v", out[0].Packet.Command)
	}
	if out[0].Packet.Options != packet.ErrChecksumMismatch {
		t.Fatalf("expected Options=1, got %d", out[0].Packet.Options)
	}
	if out[0].Packet.PIC != 1 {
		t.Fatalf("expected pic=1 (head node), got %d", out[0].Packet.PIC)
	}
}

// Scenario 4: read a full dump.
func TestReadFullDump(t *testing.T) {
	codec := packet.NewCodec(1024)
	x := node.New("X", 4096, codec, nil)

	// Pre-populate SRAM with block[i] = byte value i via WRITE.
	for i := 0; i < 4; i++ {
		data := make([]byte, 1024)
		for j := range data {
			data[j] = byte(i)
		}
		w := codec.New()
		w.Command = packet.WRITE
		w.UID = packet.UID("X")
		w.Options = uint32(i)
		w.Data = data
		w, err := codec.Finalize(w)
		if err != nil {
			t.Fatalf("finalize write: %+v", err)
		}
		out := x.HandleUpstream(w)
		if out[0].Packet.Command != packet.ACK {
			t.Fatalf("write %d failed: %v", i, out[0].Packet.Command)
		}
	}

	for i := 0; i < 4; i++ {
		r := codec.New()
		r.Command = packet.READ
		r.UID = packet.UID("X")
		r.Options = uint32(i)
		r, err := codec.Finalize(r)
		if err != nil {
			t.Fatalf("finalize read: %+v", err)
		}
		out := x.HandleUpstream(r)
		if out[0].Packet.Command != packet.ACK {
			t.Fatalf("read %d failed: %v", i, out[0].Packet.Command)
		}
		want := make([]byte, 1024)
		for j := range want {
			want[j] = byte(i)
		}
		if !bytes.Equal(out[0].Packet.Data, want) {
			t.Fatalf("read %d payload mismatch", i)
		}
	}
}

// Scenario 5: write/read round-trip.
func TestWriteReadRoundTrip(t *testing.T) {
	codec := packet.NewCodec(8)
	x := node.New("X", 64, codec, nil)

	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}
	w := codec.New()
	w.Command = packet.WRITE
	w.UID = packet.UID("X")
	w.Options = 2
	w.Data = append([]byte(nil), data...)
	w, err := codec.Finalize(w)
	if err != nil {
		t.Fatalf("finalize write: %+v", err)
	}
	if out := x.HandleUpstream(w); out[0].Packet.Command != packet.ACK {
		t.Fatalf("write failed: %v", out[0].Packet.Command)
	}

	r := codec.New()
	r.Command = packet.READ
	r.UID = packet.UID("X")
	r.Options = 2
	r, err = codec.Finalize(r)
	if err != nil {
		t.Fatalf("finalize read: %+v", err)
	}
	out := x.HandleUpstream(r)
	if !bytes.Equal(out[0].Packet.Data, data) {
		t.Fatalf("round-trip mismatch: got=%v, want=%v", out[0].Packet.Data, data)
	}
}

func TestDownstreamForwardingOnlyMutatesPICAndChecksum(t *testing.T) {
	codec := packet.NewCodec(16)
	x := node.New("X", 64, codec, nil)

	r := codec.New()
	r.Command = packet.READ
	r.UID = packet.UID("Z") // not this node
	r.Options = 1
	r, err := codec.Finalize(r)
	if err != nil {
		t.Fatalf("finalize: %+v", err)
	}
	out := x.HandleUpstream(r)
	if len(out) != 1 || out[0].Direction != node.Downstream {
		t.Fatalf("expected a single downstream forward, got %+v", out)
	}
	fwd := out[0].Packet
	if fwd.Command != r.Command || fwd.UID != r.UID || fwd.Options != r.Options {
		t.Fatalf("forwarding mutated fields beyond pic/checksum: got=%+v, want=%+v", fwd, r)
	}
	if fwd.PIC != r.PIC+1 {
		t.Fatalf("expected pic incremented by exactly one, got %d from %d", fwd.PIC, r.PIC)
	}
	if !bytes.Equal(fwd.Data, r.Data) {
		t.Fatal("forwarding mutated packet data")
	}
	if !codec.Verify(fwd) {
		t.Fatal("forwarded packet checksum does not verify")
	}
}

// fakeInterpreter is an Interpreter stub whose Output is fixed at
// construction, so a test can drive EXEC/RETR without a real byte-code
// engine behind it.
type fakeInterpreter struct {
	output []byte
}

func (f *fakeInterpreter) Load([]byte) error      { return nil }
func (f *fakeInterpreter) Exec(bool) (int, error) { return 0, nil }
func (f *fakeInterpreter) Output() []byte         { return f.output }

// RETR reports how many bytes of a block are real output, so
// a caller can stop before running out to the codec's full block count.
func TestHandleRetrReportsValidByteCountPerBlock(t *testing.T) {
	codec := packet.NewCodec(8)
	// 10 bytes of output: one full block, one 2-byte tail, including a
	// zero byte in the tail to make sure a short block — not an all-zero
	// block — is what ends retrieval.
	out := []byte{1, 2, 3, 4, 5, 6, 7, 8, 0, 9}
	x := node.New("X", 64, codec, &fakeInterpreter{output: out})

	exec := codec.New()
	exec.Command = packet.EXEC
	exec.UID = packet.UID("X")
	exec, err := codec.Finalize(exec)
	if err != nil {
		t.Fatalf("finalize exec: %+v", err)
	}
	if got := x.HandleUpstream(exec); got[0].Packet.Command != packet.ACK {
		t.Fatalf("exec failed: %v", got[0].Packet.Command)
	}

	retr := func(i int) node.Outgoing {
		p := codec.New()
		p.Command = packet.RETR
		p.UID = packet.UID("X")
		p.Options = uint32(i)
		p, err := codec.Finalize(p)
		if err != nil {
			t.Fatalf("finalize retr %d: %+v", i, err)
		}
		return x.HandleUpstream(p)[0]
	}

	block0 := retr(0)
	if block0.Packet.Options != 8 {
		t.Fatalf("block 0: expected valid=8, got %d", block0.Packet.Options)
	}
	if !bytes.Equal(block0.Packet.Data, out[0:8]) {
		t.Fatalf("block 0: unexpected data %v", block0.Packet.Data)
	}

	block1 := retr(1)
	if block1.Packet.Options != 2 {
		t.Fatalf("block 1: expected valid=2, got %d", block1.Packet.Options)
	}
	if !bytes.Equal(block1.Packet.Data[:2], out[8:10]) {
		t.Fatalf("block 1: unexpected data %v", block1.Packet.Data)
	}

	block2 := retr(2)
	if block2.Packet.Options != 0 {
		t.Fatalf("block 2 (past end): expected valid=0, got %d", block2.Packet.Options)
	}
	for _, b := range block2.Packet.Data {
		if b != 0 {
			t.Fatalf("block 2 (past end): expected zero-padding, got %v", block2.Packet.Data)
		}
	}
}

func TestHandleDownstreamPassthroughDoesNotInspect(t *testing.T) {
	codec := packet.NewCodec(16)
	x := node.New("X", 64, codec, nil)

	p := codec.New()
	p.Command = packet.ACK
	p.PIC = 3
	p.UID = packet.UID("Q")
	p, err := codec.Finalize(p)
	if err != nil {
		t.Fatalf("finalize: %+v", err)
	}
	p.Checksum ^= 0xffff // even a corrupt packet passes through untouched

	out := x.HandleDownstream(p)
	if out.Direction != node.Upstream {
		t.Fatal("expected upstream retransmission")
	}
	if out.Packet.Command != p.Command || out.Packet.PIC != p.PIC ||
		out.Packet.UID != p.UID || out.Packet.Checksum != p.Checksum ||
		!bytes.Equal(out.Packet.Data, p.Data) {
		t.Fatal("HandleDownstream must not inspect or mutate the packet")
	}
}
