// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet_test

import (
	"bytes"
	"testing"

	"github.com/sramlab/sramrig/packet"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := packet.NewCodec(1024)

	p := c.New()
	p.Command = packet.PING
	p.UID = packet.UID("AAAAAAAAAAAAAAAAAAAAAAAAA")
	p.Options = packet.PingAll

	p, err := c.Finalize(p)
	if err != nil {
		t.Fatalf("could not finalize packet: %+v", err)
	}

	raw, err := c.Encode(p)
	if err != nil {
		t.Fatalf("could not encode packet: %+v", err)
	}
	if got, want := len(raw), c.Size(); got != want {
		t.Fatalf("invalid wire size: got=%d, want=%d", got, want)
	}

	got, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("could not decode packet: %+v", err)
	}

	if got.Command != p.Command || got.PIC != p.PIC || got.Options != p.Options || got.UID != p.UID {
		t.Fatalf("decoded packet mismatch: got=%+v, want=%+v", got, p)
	}
	if !bytes.Equal(got.Data, p.Data) {
		t.Fatalf("decoded packet data mismatch")
	}
	if got.Checksum != p.Checksum {
		t.Fatalf("decoded checksum mismatch: got=0x%x, want=0x%x", got.Checksum, p.Checksum)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	c := packet.NewCodec(64)
	p := c.New()
	p.Command = packet.READ
	p.UID = packet.UID("X")
	p.Options = 3

	p1, err := c.Finalize(p)
	if err != nil {
		t.Fatalf("finalize: %+v", err)
	}
	p2, err := c.Finalize(p1)
	if err != nil {
		t.Fatalf("finalize: %+v", err)
	}
	if p1.Checksum != p2.Checksum {
		t.Fatalf("finalize is not idempotent: 0x%x != 0x%x", p1.Checksum, p2.Checksum)
	}
}

func TestUncraftedEncodeFails(t *testing.T) {
	c := packet.NewCodec(16)
	p := c.New()
	_, err := c.Encode(p)
	if err == nil {
		t.Fatal("expected an error encoding an uncrafted packet")
	}
}

func TestDecodeMalformedLength(t *testing.T) {
	c := packet.NewCodec(16)
	_, err := c.Decode(make([]byte, c.Size()-1))
	if err == nil {
		t.Fatal("expected an error decoding a short buffer")
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	c := packet.NewCodec(16)
	p := c.New()
	p.Command = packet.READ
	p.UID = packet.UID("Y")

	p, err := c.Finalize(p)
	if err != nil {
		t.Fatalf("finalize: %+v", err)
	}
	if !c.Verify(p) {
		t.Fatal("expected a freshly finalized packet to verify")
	}

	raw, err := c.Encode(p)
	if err != nil {
		t.Fatalf("encode: %+v", err)
	}
	raw[len(raw)-1] ^= 0xff // flip a checksum byte

	corrupt, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %+v", err)
	}
	if c.Verify(corrupt) {
		t.Fatal("expected corrupted packet to fail verification")
	}
}

func TestBroadcastUID(t *testing.T) {
	if !packet.IsBroadcast(packet.BroadcastUID) {
		t.Fatal("BroadcastUID does not match itself")
	}
	if packet.IsBroadcast(packet.UID("X")) {
		t.Fatal("ordinary UID incorrectly matched as broadcast")
	}
}

func TestUIDStringRoundTrip(t *testing.T) {
	uid := packet.UID("ABCD")
	if got, want := packet.UIDString(uid), "ABCD"; got != want {
		t.Fatalf("UIDString: got=%q, want=%q", got, want)
	}
}
