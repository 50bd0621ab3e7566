// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

import (
	"context"

	"github.com/sramlab/sramrig/packet"
	"github.com/sramlab/sramrig/transport"
)

// Read dumps the full SRAM of every managed device, block by block. A
// corrupted or UID-mismatched reply skips that block with a WARNING and
// continues; a timeout aborts the rest of that device and moves on to
// the next.
func (r *Reader) Read() (ReadResult, error) {
	if err := r.requireCapability(CapRead); err != nil {
		return ReadResult{}, err
	}

	ctx := context.Background()
	var out ReadResult

	for _, dev := range r.table.List() {
		nblocks := dev.SRAMSize / r.codec.D
		for offset := 0; offset < nblocks; offset++ {
			req := r.codec.New()
			req.Command = packet.READ
			req.UID = packet.UID(dev.UID)
			req.Options = uint32(offset)
			req, err := r.codec.Finalize(req)
			if err != nil {
				return out, r.errorf("could not craft READ for %q offset=%d: %v", dev.UID, offset, err)
			}

			resp, err := r.exchange(req)
			if err == transport.ErrTimedOut {
				r.warnf("read: device %q timed out at offset %d, aborting this device", dev.UID, offset)
				break
			}
			if err != nil {
				return out, r.errorf("could not read from %q: %v", dev.UID, err)
			}
			if !r.codec.Verify(resp) || resp.Command != packet.ACK || packet.UIDString(resp.UID) != dev.UID {
				r.warnf("read: block %d of %q is corrupted, skipping", offset, dev.UID)
				continue
			}

			sample := Sample{UID: dev.UID, PIC: dev.PIC, BlockOffset: offset, Data: resp.Data}
			out.Samples = append(out.Samples, sample)

			if r.store != nil {
				if err := r.store.SaveSample(ctx, dev.UID, r.boardKind, dev.PIC, offset, resp.Data); err != nil {
					r.warnf("read: could not persist block %d of %q: %v", offset, dev.UID, err)
				}
			}
		}
	}

	return out, nil
}

// Write sends one block to one device.
func (r *Reader) Write(uid string, offset int, data []byte) (WriteResult, error) {
	if err := r.requireCapability(CapWrite); err != nil {
		return WriteResult{}, err
	}

	dev, err := r.table.Get(uid)
	if err != nil {
		return WriteResult{}, r.errorf("unknown device %q", uid)
	}
	if offset < 0 || offset >= dev.SRAMSize/r.codec.D {
		return WriteResult{}, r.errorf("offset %d out of range for %q", offset, uid)
	}
	if len(data) > r.codec.D {
		return WriteResult{}, r.errorf("write payload for %q is longer than D=%d bytes", uid, r.codec.D)
	}
	block := make([]byte, r.codec.D)
	copy(block, data)

	return r.writeBlock(dev.UID, offset, block)
}

func (r *Reader) writeBlock(uid string, offset int, block []byte) (WriteResult, error) {
	req := r.codec.New()
	req.Command = packet.WRITE
	req.UID = packet.UID(uid)
	req.Options = uint32(offset)
	req.Data = block
	req, err := r.codec.Finalize(req)
	if err != nil {
		return WriteResult{}, r.errorf("could not craft WRITE for %q offset=%d: %v", uid, offset, err)
	}

	resp, err := r.exchange(req)
	if err != nil {
		return WriteResult{}, r.errorf("could not write to %q offset=%d: %v", uid, offset, err)
	}
	if !r.codec.Verify(resp) || resp.Command != packet.ACK || packet.UIDString(resp.UID) != uid {
		return WriteResult{}, r.errorf("write to %q offset=%d was not acknowledged", uid, offset)
	}
	return WriteResult{UID: uid, Offset: offset}, nil
}

// WriteInvert writes the bitwise-NOT of a prior full reference dump back
// to every managed device at an even index in the discovery order. A
// device lacking a complete reference dump is skipped with a WARNING;
// nothing is written to it.
func (r *Reader) WriteInvert() (WriteInvertResult, error) {
	if err := r.requireCapability(CapWriteInvert); err != nil {
		return WriteInvertResult{}, err
	}

	ctx := context.Background()
	var out WriteInvertResult

	devs := r.table.List()
	for i, dev := range devs {
		if i%2 != 0 {
			continue
		}

		nblocks := dev.SRAMSize / r.codec.D
		complete, err := r.referenceComplete(ctx, dev.UID, dev.SRAMSize)
		if err != nil {
			r.warnf("write_invert: could not check reference for %q: %v", dev.UID, err)
			continue
		}
		if !complete {
			r.warnf("At least one full memory sample has to be read from device %s", dev.UID)
			continue
		}

		for offset := 0; offset < nblocks; offset++ {
			ref, err := r.store.ReferenceBlock(ctx, dev.UID, offset)
			if err != nil {
				r.warnf("write_invert: no reference block %d for %q: %v", offset, dev.UID, err)
				continue
			}
			block := make([]byte, len(ref))
			for j, b := range ref {
				block[j] = ^b
			}

			res, err := r.writeBlock(dev.UID, offset, block)
			if err != nil {
				r.warnf("write_invert: could not write block %d of %q: %v", offset, dev.UID, err)
				continue
			}
			out.Written = append(out.Written, res)
		}
	}

	return out, nil
}

func (r *Reader) referenceComplete(ctx context.Context, uid string, sramSize int) (bool, error) {
	if r.store == nil {
		return false, nil
	}
	return r.store.IsDumpComplete(ctx, uid, sramSize, r.codec.D)
}
