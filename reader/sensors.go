// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

import (
	"context"
	"encoding/binary"

	"github.com/sramlab/sramrig/packet"
)

// Sensors issues SENSORS/ALL to every managed device and decodes the
// telemetry payload. A corrupted response is a per-device WARNING; it
// does not abort the remaining devices.
func (r *Reader) Sensors() (SensorsResult, error) {
	if err := r.requireCapability(CapSensors); err != nil {
		return SensorsResult{}, err
	}

	ctx := context.Background()
	var out SensorsResult

	for _, dev := range r.table.List() {
		req := r.codec.New()
		req.Command = packet.SENSORS
		req.UID = packet.UID(dev.UID)
		req.Options = packet.SensorsAll
		req, err := r.codec.Finalize(req)
		if err != nil {
			r.warnf("sensors: could not craft request for %q: %v", dev.UID, err)
			continue
		}

		resp, err := r.exchange(req)
		if err != nil {
			r.warnf("sensors: %q did not answer: %v", dev.UID, err)
			continue
		}
		if !r.codec.Verify(resp) || resp.Command != packet.ACK || packet.UIDString(resp.UID) != dev.UID {
			r.warnf("sensors: response from %q is corrupted, skipping", dev.UID)
			continue
		}
		if len(resp.Data) < 10 {
			r.warnf("sensors: response from %q is too short to decode", dev.UID)
			continue
		}

		reading := SensorReading{
			UID:        dev.UID,
			PIC:        dev.PIC,
			Temp110Cal: binary.LittleEndian.Uint16(resp.Data[0:2]),
			Temp30Cal:  binary.LittleEndian.Uint16(resp.Data[2:4]),
			TempRaw:    binary.LittleEndian.Uint16(resp.Data[4:6]),
			VddCal:     binary.LittleEndian.Uint16(resp.Data[6:8]),
			VddRaw:     binary.LittleEndian.Uint16(resp.Data[8:10]),
		}
		out.Readings = append(out.Readings, reading)

		if r.store != nil {
			if err := r.store.SaveSensor(ctx, dev.UID, r.boardKind, dev.PIC, reading.TempRaw, reading.VddRaw); err != nil {
				r.warnf("sensors: could not persist reading for %q: %v", dev.UID, err)
			}
		}
	}

	return out, nil
}
