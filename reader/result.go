// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

// DeviceInfo is one entry of a Status/Ping response.
type DeviceInfo struct {
	UID      string
	PIC      uint8
	SRAMSize int
	// Revision is the board firmware/hardware revision string. Ping and
	// Status never set it: a PING ACK's Options field carries only the
	// SRAM size, so it is always the zero value.
	Revision string
}

// StatusResult is the response to Status.
type StatusResult struct {
	State   string // "ON" or "OFF"
	Devices []DeviceInfo
}

// PingResult is the response to Ping.
type PingResult struct {
	Devices []DeviceInfo
}

// HealthcheckResult is the response to Healthcheck.
type HealthcheckResult struct {
	UID     string
	Reached bool
}

// Sample is one memory-block read.
type Sample struct {
	UID         string
	PIC         uint8
	BlockOffset int
	Data        []byte
}

// ReadResult is the response to Read.
type ReadResult struct {
	Samples []Sample
}

// WriteResult is the response to Write.
type WriteResult struct {
	UID    string
	Offset int
}

// WriteInvertResult is the response to WriteInvert.
type WriteInvertResult struct {
	Written []WriteResult
}

// SensorReading is one device's decoded SENSORS/ALL response.
type SensorReading struct {
	UID        string
	PIC        uint8
	TempRaw    uint16
	VddRaw     uint16
	Temp30Cal  uint16
	Temp110Cal uint16
	VddCal     uint16
}

// SensorsResult is the response to Sensors.
type SensorsResult struct {
	Readings []SensorReading
}

// LoadResult is the response to Load.
type LoadResult struct {
	UID    string
	Chunks int
}

// ExecResult is the response to Exec.
type ExecResult struct {
	UID  string
	Code int32
}

// RetrieveResult is the response to Retrieve: the raw concatenated
// output region, plus two best-effort decodes of it (Ints, Text) for a
// caller that knows the interpreter left a specific shape of data
// behind and doesn't want to redo the unpacking itself.
type RetrieveResult struct {
	UID  string
	Data []byte
	Ints []int32
	Text string
}
