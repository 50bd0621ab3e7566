// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

import (
	"fmt"

	"github.com/sramlab/sramrig/logsink"
)

// PowerOn powers the link up. Idempotent: calling it while already
// powered is a no-op success.
func (r *Reader) PowerOn() error {
	if err := r.requireCapability(CapPowerOn); err != nil {
		return err
	}
	if err := r.transport.PowerOn(); err != nil {
		return r.errorf("could not power on: %v", err)
	}
	r.emit(logsink.LevelInfo, logsink.StatusOK, "powered on")
	return nil
}

// PowerOff powers the link down. The membership table is left as-is:
// the next successful Ping will refresh or clear it.
func (r *Reader) PowerOff() error {
	if err := r.requireCapability(CapPowerOff); err != nil {
		return err
	}
	if err := r.transport.PowerOff(); err != nil {
		return r.errorf("could not power off: %v", err)
	}
	r.emit(logsink.LevelInfo, logsink.StatusOK, "powered off")
	return nil
}

// Status reports power state and the current membership table.
func (r *Reader) Status() (StatusResult, error) {
	if err := r.requireCapability(CapStatus); err != nil {
		return StatusResult{}, err
	}

	state := "OFF"
	if r.transport.Powered() {
		state = "ON"
	}

	devs := r.table.List()
	out := StatusResult{State: state, Devices: make([]DeviceInfo, len(devs))}
	for i, d := range devs {
		out.Devices[i] = DeviceInfo{UID: d.UID, PIC: d.PIC, SRAMSize: d.SRAMSize}
	}
	return out, nil
}

func (r *Reader) String() string {
	return fmt.Sprintf("reader(%s, board=%s)", r.name, r.boardKind)
}
