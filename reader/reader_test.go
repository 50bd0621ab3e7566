// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader_test

import (
	"context"
	"testing"

	"github.com/sramlab/sramrig/node"
	"github.com/sramlab/sramrig/packet"
	"github.com/sramlab/sramrig/reader"
	"github.com/sramlab/sramrig/transport"
)

func newChain(t *testing.T, codec *packet.Codec, uids []string, sramSize int) *transport.Sim {
	t.Helper()
	nodes := make([]*node.Node, len(uids))
	for i, uid := range uids {
		nodes[i] = node.New(uid, sramSize, codec, nil)
	}
	sim := transport.NewSim(codec, nodes)
	if err := sim.PowerOn(); err != nil {
		t.Fatalf("power on: %+v", err)
	}
	return sim
}

func TestReaderPingBuildsTable(t *testing.T) {
	codec := packet.NewCodec(16)
	sim := newChain(t, codec, []string{"X", "Y", "Z"}, 64)

	rd := reader.New(sim, codec)
	result, err := rd.Ping()
	if err != nil {
		t.Fatalf("ping: %+v", err)
	}
	if len(result.Devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(result.Devices))
	}
	for i, want := range []string{"X", "Y", "Z"} {
		if result.Devices[i].UID != want {
			t.Fatalf("device %d: got=%q, want=%q", i, result.Devices[i].UID, want)
		}
	}
	if rd.Table().Len() != 3 {
		t.Fatalf("expected table to hold 3 devices, got %d", rd.Table().Len())
	}
}

func TestReaderPingNoDevicesIsError(t *testing.T) {
	codec := packet.NewCodec(16)
	sim := transport.NewSim(codec, nil)
	sim.PowerOn()

	rd := reader.New(sim, codec)
	if _, err := rd.Ping(); err == nil {
		t.Fatal("expected an error when no device answers discovery")
	}
}

func TestReaderWriteReadRoundTrip(t *testing.T) {
	codec := packet.NewCodec(8)
	sim := newChain(t, codec, []string{"X"}, 64)

	rd := reader.New(sim, codec)
	if _, err := rd.Ping(); err != nil {
		t.Fatalf("ping: %+v", err)
	}

	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 1, 2, 3, 4}
	if _, err := rd.Write("X", 2, data); err != nil {
		t.Fatalf("write: %+v", err)
	}

	result, err := rd.Read()
	if err != nil {
		t.Fatalf("read: %+v", err)
	}

	var found bool
	for _, s := range result.Samples {
		if s.BlockOffset == 2 {
			found = true
			if string(s.Data) != string(data) {
				t.Fatalf("block 2 mismatch: got=%v, want=%v", s.Data, data)
			}
		}
	}
	if !found {
		t.Fatal("expected a sample at block_offset=2")
	}
	if want := 64 / 8; len(result.Samples) != want {
		t.Fatalf("expected %d samples, got %d", want, len(result.Samples))
	}
}

type noReferenceStore struct{}

func (noReferenceStore) SaveSample(ctx context.Context, uid, boardKind string, pic uint8, blockOffset int, data []byte) error {
	return nil
}
func (noReferenceStore) SaveSensor(ctx context.Context, uid, boardKind string, pic uint8, tempRaw, vddRaw uint16) error {
	return nil
}
func (noReferenceStore) IsDumpComplete(ctx context.Context, uid string, sramSize, blockSize int) (bool, error) {
	return false, nil
}
func (noReferenceStore) ReferenceBlock(ctx context.Context, uid string, blockOffset int) ([]byte, error) {
	return nil, nil
}

// Scenario 6: write-invert requires a reference dump.
func TestWriteInvertRequiresReference(t *testing.T) {
	codec := packet.NewCodec(8)
	sim := newChain(t, codec, []string{"X", "Y"}, 64)

	rd := reader.New(sim, codec, reader.WithSampleStore(noReferenceStore{}))
	if _, err := rd.Ping(); err != nil {
		t.Fatalf("ping: %+v", err)
	}

	result, err := rd.WriteInvert()
	if err != nil {
		t.Fatalf("write_invert: %+v", err)
	}
	if len(result.Written) != 0 {
		t.Fatalf("expected no blocks written without a reference, wrote %d", len(result.Written))
	}
}

func TestReaderRejectsDisabledCapability(t *testing.T) {
	codec := packet.NewCodec(8)
	sim := newChain(t, codec, []string{"X"}, 64)

	rd := reader.New(sim, codec, reader.WithCapabilities(reader.CapPing, reader.CapStatus))
	if _, err := rd.Read(); err == nil {
		t.Fatal("expected read to be rejected: capability not in the restricted set")
	}
}

// fixedOutputInterpreter is a node.Interpreter stub that always returns
// the same program output, so Retrieve can be driven against a known,
// non-block-aligned output length.
type fixedOutputInterpreter struct {
	output []byte
}

func (f *fixedOutputInterpreter) Load([]byte) error      { return nil }
func (f *fixedOutputInterpreter) Exec(bool) (int, error) { return 0, nil }
func (f *fixedOutputInterpreter) Output() []byte         { return f.output }

// Retrieve must stop at the real end of the output region, not run out
// to maxBlocks: a device's output is almost never an exact multiple of
// the wire block size, and every RETR response is a full, zero-padded
// block regardless.
func TestRetrieveStopsAtRealOutputLength(t *testing.T) {
	codec := packet.NewCodec(8)
	out := []byte{1, 2, 3, 4, 5, 6, 7, 8, 0, 9}
	n := node.New("X", 64, codec, &fixedOutputInterpreter{output: out})
	sim := transport.NewSim(codec, []*node.Node{n})
	if err := sim.PowerOn(); err != nil {
		t.Fatalf("power on: %+v", err)
	}

	rd := reader.New(sim, codec)
	if _, err := rd.Ping(); err != nil {
		t.Fatalf("ping: %+v", err)
	}
	if _, err := rd.Exec("X", false); err != nil {
		t.Fatalf("exec: %+v", err)
	}

	result, err := rd.Retrieve("X", 4096)
	if err != nil {
		t.Fatalf("retrieve: %+v", err)
	}
	if string(result.Data) != string(out) {
		t.Fatalf("retrieve: got=%v, want=%v", result.Data, out)
	}
}
