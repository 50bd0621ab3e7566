// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"encoding/binary"

	"github.com/sramlab/sramrig/packet"
)

// Sensors is a device's raw environmental telemetry snapshot. Values are
// kept raw/uncalibrated; conversion to physical units is a consumer
// concern. Calibration pointers are nil when the device lacks that
// calibration word — encoding such a field yields zero, per the SENSORS
// open question.
type Sensors struct {
	TempRaw uint16
	VddRaw  uint16

	Temp30Cal  *uint16
	Temp110Cal *uint16
	VddCal     *uint16
}

func calWord(v *uint16) uint16 {
	if v == nil {
		return 0
	}
	return *v
}

// Encode writes the requested telemetry subset into data (which must be
// at least as long as the subset needs) as little-endian 16-bit words,
// zero-padding whatever is left over. It reports whether any requested
// calibration word was missing, so the caller can log a note.
func (s Sensors) Encode(data []byte, subset uint32) (missingCal bool) {
	for i := range data {
		data[i] = 0
	}

	put := func(off int, v uint16) {
		binary.LittleEndian.PutUint16(data[off:off+2], v)
	}

	switch subset {
	case packet.SensorsAll:
		missingCal = s.Temp30Cal == nil || s.Temp110Cal == nil || s.VddCal == nil
		put(0, calWord(s.Temp110Cal))
		put(2, calWord(s.Temp30Cal))
		put(4, s.TempRaw)
		put(6, calWord(s.VddCal))
		put(8, s.VddRaw)
	case packet.SensorsTemp:
		missingCal = s.Temp30Cal == nil || s.Temp110Cal == nil
		put(0, calWord(s.Temp110Cal))
		put(2, calWord(s.Temp30Cal))
		put(4, s.TempRaw)
	case packet.SensorsVdd:
		missingCal = s.VddCal == nil
		put(0, calWord(s.VddCal))
		put(2, s.VddRaw)
	}
	return missingCal
}
