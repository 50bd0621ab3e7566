// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/sramlab/sramrig/logsink"
	"github.com/sramlab/sramrig/packet"
)

// Load splits source into D-byte chunks and issues one LOAD packet per
// chunk, Options carrying the chunk index. Every chunk must be
// acknowledged; the first failure aborts.
func (r *Reader) Load(uid string, source []byte) (LoadResult, error) {
	if err := r.requireCapability(CapLoad); err != nil {
		return LoadResult{}, err
	}
	if _, err := r.table.Get(uid); err != nil {
		return LoadResult{}, r.errorf("unknown device %q", uid)
	}

	n := 0
	for off := 0; off < len(source); off += r.codec.D {
		end := off + r.codec.D
		if end > len(source) {
			end = len(source)
		}
		chunk := make([]byte, r.codec.D)
		copy(chunk, source[off:end])

		req := r.codec.New()
		req.Command = packet.LOAD
		req.UID = packet.UID(uid)
		req.Options = uint32(n)
		req.Data = chunk
		req, err := r.codec.Finalize(req)
		if err != nil {
			return LoadResult{}, r.errorf("could not craft LOAD chunk %d for %q: %v", n, uid, err)
		}

		resp, err := r.exchange(req)
		if err != nil {
			return LoadResult{Chunks: n}, r.errorf("could not load chunk %d into %q: %v", n, uid, err)
		}
		if !r.codec.Verify(resp) || resp.Command != packet.ACK || packet.UIDString(resp.UID) != uid {
			return LoadResult{Chunks: n}, r.errorf("load chunk %d into %q was not acknowledged", n, uid)
		}
		n++
	}

	return LoadResult{UID: uid, Chunks: n}, nil
}

// Exec issues a single EXEC packet and reports the interpreter's return
// code, encoded in the response's Options field. reset selects whether
// the device's output pointer is reset before running.
func (r *Reader) Exec(uid string, reset bool) (ExecResult, error) {
	if err := r.requireCapability(CapExec); err != nil {
		return ExecResult{}, err
	}
	if _, err := r.table.Get(uid); err != nil {
		return ExecResult{}, r.errorf("unknown device %q", uid)
	}

	options := uint32(0)
	if reset {
		options = 1
	}

	req := r.codec.New()
	req.Command = packet.EXEC
	req.UID = packet.UID(uid)
	req.Options = options
	req, err := r.codec.Finalize(req)
	if err != nil {
		return ExecResult{}, r.errorf("could not craft EXEC for %q: %v", uid, err)
	}

	resp, err := r.exchange(req)
	if err != nil {
		return ExecResult{}, r.errorf("could not exec on %q: %v", uid, err)
	}
	if !r.codec.Verify(resp) || resp.Command != packet.ACK || packet.UIDString(resp.UID) != uid {
		return ExecResult{}, r.errorf("exec on %q was not acknowledged", uid)
	}

	code := int32(resp.Options)
	if code != 0 {
		r.emit(logsink.LevelError, logsink.StatusError, fmt.Sprintf("interpreter on %q returned code %d", uid, code))
	}
	return ExecResult{UID: uid, Code: code}, nil
}

// Retrieve concatenates the output region of uid by iterating RETR over
// it. Every RETR response is a full D-byte block on the wire, zero-padded
// past the end of the interpreter's actual output, so end-of-output is
// not "an empty block" — it's the ACK's Options field, which the node
// sets to the number of real bytes in that block rather than echoing the
// request's block index. A count below the block size, including zero,
// ends the retrieval.
func (r *Reader) Retrieve(uid string, maxBlocks int) (RetrieveResult, error) {
	if err := r.requireCapability(CapRetrieve); err != nil {
		return RetrieveResult{}, err
	}
	if _, err := r.table.Get(uid); err != nil {
		return RetrieveResult{}, r.errorf("unknown device %q", uid)
	}

	var out []byte
	for i := 0; i < maxBlocks; i++ {
		req := r.codec.New()
		req.Command = packet.RETR
		req.UID = packet.UID(uid)
		req.Options = uint32(i)
		req, err := r.codec.Finalize(req)
		if err != nil {
			return RetrieveResult{}, r.errorf("could not craft RETR chunk %d for %q: %v", i, uid, err)
		}

		resp, err := r.exchange(req)
		if err != nil {
			return RetrieveResult{UID: uid, Data: out}, r.errorf("could not retrieve chunk %d from %q: %v", i, uid, err)
		}
		if !r.codec.Verify(resp) || resp.Command != packet.ACK || packet.UIDString(resp.UID) != uid {
			r.warnf("retrieve: chunk %d from %q is corrupted, stopping", i, uid)
			break
		}

		valid := int(resp.Options)
		if valid > len(resp.Data) {
			valid = len(resp.Data)
		}
		if valid > 0 {
			out = append(out, resp.Data[:valid]...)
		}
		if valid < r.codec.D {
			break
		}
	}

	ints, text := decodeRetrieved(out)
	return RetrieveResult{UID: uid, Data: out, Ints: ints, Text: text}, nil
}

// decodeRetrieved best-effort-decodes a retrieved output region as a
// little-endian int32 sequence, then derives a text rendering from it.
// Trailing bytes that don't fill a whole int32 are dropped. Both decodes
// are best-effort: the interpreter's output has no declared type, so
// this can't do better than guess at the shape a program left behind.
func decodeRetrieved(data []byte) ([]int32, string) {
	n := len(data) / 4
	if n == 0 {
		return nil, ""
	}

	ints := make([]int32, n)
	for i := 0; i < n; i++ {
		ints[i] = int32(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}

	var text strings.Builder
	for _, v := range ints {
		s := strconv.Itoa(int(v))
		s = strings.ReplaceAll(s, "10", "\n")
		s = strings.ReplaceAll(s, "32", " ")
		text.WriteString(s)
	}
	return ints, text.String()
}
