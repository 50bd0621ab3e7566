// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport provides the station-side framed I/O contract over
// one chain's link: send a whole packet, receive a whole packet (or time
// out), and power-cycle the link. It knows nothing about chain topology
// or command semantics — that is the Reader's job.
package transport // import "github.com/sramlab/sramrig/transport"

import (
	"errors"
	"time"

	"github.com/sramlab/sramrig/packet"
)

// ErrTimedOut is returned by Receive when no full packet arrived within
// the deadline. The transport retains no state across a timeout: the
// next Receive starts from a clean buffer.
var ErrTimedOut = errors.New("transport: receive timed out")

// ErrPortOff is returned by Send/Receive when the link has not been
// powered on.
var ErrPortOff = errors.New("transport: port is powered off")

// Transport is the station-side half-duplex link to the head of one
// chain. Implementations must not be used concurrently: the Reader
// serializes its own Send/Receive pairs, and a Transport must not
// interleave state across in-flight commands.
type Transport interface {
	// Send transmits one finalized packet.
	Send(p packet.Packet) error
	// Receive blocks until one full packet has arrived or deadline
	// elapses, whichever comes first.
	Receive(deadline time.Duration) (packet.Packet, error)
	// PowerOn/PowerOff toggle the link's power.
	PowerOn() error
	PowerOff() error
	// Powered reports the current power state.
	Powered() bool
	// Close releases the underlying resource.
	Close() error
}
