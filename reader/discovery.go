// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

import (
	"time"

	"github.com/sramlab/sramrig/chain"
	"github.com/sramlab/sramrig/packet"
	"github.com/sramlab/sramrig/transport"
)

// Ping runs the discovery protocol: broadcast PING/ALL, collect every
// ACK that bubbles back within the deadline, and rebuild the membership
// table from what answered.
func (r *Reader) Ping() (PingResult, error) {
	if err := r.requireCapability(CapPing); err != nil {
		return PingResult{}, err
	}

	wasEmpty := r.table.Len() == 0

	req := r.codec.New()
	req.Command = packet.PING
	req.PIC = 0
	req.UID = packet.BroadcastUID
	req.Options = packet.PingAll
	req, err := r.codec.Finalize(req)
	if err != nil {
		return PingResult{}, r.errorf("could not craft PING/ALL: %v", err)
	}

	if err := r.transport.Send(req); err != nil {
		return PingResult{}, r.errorf("could not send PING/ALL: %v", err)
	}

	r.table.Clear()
	seen := make(map[string]uint8)

	for {
		resp, err := r.transport.Receive(r.pingDeadline)
		if err == transport.ErrTimedOut {
			break
		}
		if err != nil {
			return PingResult{}, r.errorf("could not receive during discovery: %v", err)
		}
		if !r.codec.Verify(resp) {
			r.warnf("discovery: discarding a corrupted ACK")
			continue
		}
		if resp.Command != packet.ACK {
			continue
		}

		uid := packet.UIDString(resp.UID)
		if prevPIC, dup := seen[uid]; dup {
			if resp.PIC == prevPIC {
				continue
			}
			if resp.PIC < prevPIC {
				r.warnf("discovery: device %q reported pic=%d and pic=%d; keeping the lower", uid, prevPIC, resp.PIC)
				seen[uid] = resp.PIC
				r.table.Upsert(chain.Device{UID: uid, PIC: resp.PIC, SRAMSize: int(resp.Options), LastSeen: time.Now()})
			} else {
				r.warnf("discovery: device %q reported pic=%d and pic=%d; keeping the lower", uid, resp.PIC, prevPIC)
			}
			continue
		}
		seen[uid] = resp.PIC
		r.table.Upsert(chain.Device{UID: uid, PIC: resp.PIC, SRAMSize: int(resp.Options), LastSeen: time.Now()})
	}

	isEmpty := r.table.Len() == 0
	switch {
	case wasEmpty && isEmpty:
		return PingResult{}, r.errorf("no devices could be identified")
	case !wasEmpty && isEmpty:
		return PingResult{}, r.errorf("devices were connected but now none could be identified")
	}

	devs := r.table.List()
	out := PingResult{Devices: make([]DeviceInfo, len(devs))}
	for i, d := range devs {
		out.Devices[i] = DeviceInfo{UID: d.UID, PIC: d.PIC, SRAMSize: d.SRAMSize}
	}
	return out, nil
}

// Healthcheck issues a single PING/OWN at uid and reports whether it
// answered, without touching the membership table. It is a narrower
// diagnostic than Ping, meant for a quick per-device liveness probe.
func (r *Reader) Healthcheck(uid string) (HealthcheckResult, error) {
	if err := r.requireCapability(CapHealthcheck); err != nil {
		return HealthcheckResult{}, err
	}

	req := r.codec.New()
	req.Command = packet.PING
	req.UID = packet.UID(uid)
	req.Options = packet.PingOwn
	req, err := r.codec.Finalize(req)
	if err != nil {
		return HealthcheckResult{}, r.errorf("could not craft PING/OWN for %q: %v", uid, err)
	}

	resp, err := r.exchange(req)
	if err == transport.ErrTimedOut {
		return HealthcheckResult{UID: uid, Reached: false}, nil
	}
	if err != nil {
		return HealthcheckResult{}, r.errorf("could not healthcheck %q: %v", uid, err)
	}
	if !r.codec.Verify(resp) || resp.Command != packet.ACK || packet.UIDString(resp.UID) != uid {
		return HealthcheckResult{UID: uid, Reached: false}, nil
	}
	return HealthcheckResult{UID: uid, Reached: true}, nil
}
