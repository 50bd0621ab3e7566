// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reader implements the command planner/executor that drives a
// single serial port: it owns one transport and one chain membership
// table, and exposes the platform's capability set as ordinary Go
// methods. A Reader never runs two exchanges concurrently — the
// transport underneath is not reentrant.
package reader // import "github.com/sramlab/sramrig/reader"

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sramlab/sramrig/chain"
	"github.com/sramlab/sramrig/logsink"
	"github.com/sramlab/sramrig/packet"
	"github.com/sramlab/sramrig/transport"
)

// Capability names one handler a Reader variant may or may not expose.
type Capability string

const (
	CapPowerOn     Capability = "power_on"
	CapPowerOff    Capability = "power_off"
	CapStatus      Capability = "status"
	CapPing        Capability = "ping"
	CapRead        Capability = "read"
	CapWrite       Capability = "write"
	CapWriteInvert Capability = "write_invert"
	CapSensors     Capability = "sensors"
	CapLoad        Capability = "load"
	CapExec        Capability = "exec"
	CapRetrieve    Capability = "retrieve"

	// CapHealthcheck is a supplemental diagnostic capability, off by
	// default: a single-device PING/OWN that does not touch the
	// membership table.
	CapHealthcheck Capability = "healthcheck"
)

func defaultCapabilities() map[Capability]bool {
	return map[Capability]bool{
		CapPowerOn: true, CapPowerOff: true, CapStatus: true, CapPing: true,
		CapRead: true, CapWrite: true, CapWriteInvert: true, CapSensors: true,
		CapLoad: true, CapExec: true, CapRetrieve: true,
	}
}

var (
	ErrCapabilityDisabled = errors.New("reader: capability not enabled for this reader variant")
	ErrPortNotPowered     = errors.New("reader: port is not powered on")
	ErrNoDevicesManaged   = errors.New("reader: no devices are currently managed")
)

// SampleStore is the persistence collaborator a Reader needs: saving
// samples and sensor readings, and answering the write-invert reference
// query. Reader depends only on this interface, never on a concrete
// database driver.
type SampleStore interface {
	SaveSample(ctx context.Context, uid, boardKind string, pic uint8, blockOffset int, data []byte) error
	SaveSensor(ctx context.Context, uid, boardKind string, pic uint8, tempRaw, vddRaw uint16) error
	IsDumpComplete(ctx context.Context, uid string, sramSize, blockSize int) (bool, error)
	ReferenceBlock(ctx context.Context, uid string, blockOffset int) ([]byte, error)
}

// Reader binds one transport to one chain membership table and knows a
// board_kind label. Variants (different physical board line-layers)
// restrict or re-interpret the capability set through Options, but must
// preserve each handler's externally observable contract.
type Reader struct {
	name      string
	boardKind string

	transport transport.Transport
	codec     *packet.Codec
	table     *chain.Table
	store     SampleStore
	sink      *logsink.Sink

	caps map[Capability]bool

	hopDeadline  time.Duration
	pingDeadline time.Duration
}

// Option configures a Reader at construction time.
type Option func(*Reader)

// WithCapabilities restricts the Reader to exactly the given set,
// overriding the default (every capability but Healthcheck).
func WithCapabilities(caps ...Capability) Option {
	return func(r *Reader) {
		r.caps = make(map[Capability]bool, len(caps))
		for _, c := range caps {
			r.caps[c] = true
		}
	}
}

// WithBoardKind sets the board_kind label attached to every persisted
// record and status response.
func WithBoardKind(kind string) Option {
	return func(r *Reader) { r.boardKind = kind }
}

// WithName sets the source_name carried on every emitted event.
func WithName(name string) Option {
	return func(r *Reader) { r.name = name }
}

// WithSampleStore wires the persistence collaborator. Readers created
// without one treat read/sensors as non-persisting dry runs and
// write_invert as always lacking a reference.
func WithSampleStore(store SampleStore) Option {
	return func(r *Reader) { r.store = store }
}

// WithEventSink wires the log sink events are emitted to. A Reader
// without one runs silently.
func WithEventSink(sink *logsink.Sink) Option {
	return func(r *Reader) { r.sink = sink }
}

// WithHopDeadline overrides the per-exchange receive deadline (default
// 200ms).
func WithHopDeadline(d time.Duration) Option {
	return func(r *Reader) { r.hopDeadline = d }
}

// WithPingDeadline overrides the discovery receive deadline (default
// 500ms — discovery waits for the whole chain to answer, not one hop).
func WithPingDeadline(d time.Duration) Option {
	return func(r *Reader) { r.pingDeadline = d }
}

// New binds t (already opened, not necessarily powered) and codec to a
// fresh, empty chain table.
func New(t transport.Transport, codec *packet.Codec, opts ...Option) *Reader {
	r := &Reader{
		name:         "reader",
		boardKind:    "generic",
		transport:    t,
		codec:        codec,
		table:        chain.New(),
		caps:         defaultCapabilities(),
		hopDeadline:  200 * time.Millisecond,
		pingDeadline: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table exposes the chain membership table for inspection (e.g. by a
// Dispatcher assembling a status record from another thread's snapshot).
// Callers must not mutate it; it is owned by this Reader's goroutine.
func (r *Reader) Table() *chain.Table { return r.table }

func (r *Reader) emit(level logsink.Level, status logsink.Status, msg interface{}) {
	if r.sink == nil {
		return
	}
	r.sink.Emit(logsink.Event{
		Status:     status,
		Msg:        msg,
		Level:      level,
		SourceName: r.name,
		Timestamp:  time.Now(),
	})
}

func (r *Reader) warnf(format string, args ...interface{}) {
	r.emit(logsink.LevelWarning, logsink.StatusOK, fmt.Sprintf(format, args...))
}

func (r *Reader) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	r.emit(logsink.LevelError, logsink.StatusError, msg)
	return errors.New(msg)
}

// requireCapability enforces the {capability} → {powered, non-empty
// table} precondition lattice described for the platform: power_on,
// power_off and status have no precondition; ping requires the port
// powered; every remaining handler requires both.
func (r *Reader) requireCapability(c Capability) error {
	if !r.caps[c] {
		return fmt.Errorf("%w: %s", ErrCapabilityDisabled, c)
	}

	switch c {
	case CapPowerOn, CapPowerOff, CapStatus:
		return nil
	case CapPing:
		if !r.transport.Powered() {
			return r.errorf("%s", ErrPortNotPowered)
		}
		return nil
	default:
		if !r.transport.Powered() {
			return r.errorf("%s", ErrPortNotPowered)
		}
		if r.table.Len() == 0 {
			return r.errorf("%s", ErrNoDevicesManaged)
		}
		return nil
	}
}

// exchange sends p and waits for the matching reply within the Reader's
// hop deadline, translating transport/protocol errors into the taxonomy
// spelled out for this platform (transport errors abort the exchange;
// protocol errors — UID mismatch on an ACK — are the caller's to
// classify, since some callers treat them as skip-worthy and others as
// fatal).
func (r *Reader) exchange(p packet.Packet) (packet.Packet, error) {
	if err := r.transport.Send(p); err != nil {
		return packet.Packet{}, fmt.Errorf("reader: could not send packet: %w", err)
	}
	resp, err := r.transport.Receive(r.hopDeadline)
	if err != nil {
		return packet.Packet{}, err
	}
	return resp, nil
}
