// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/sramlab/sramrig/packet"
)

// pollInterval bounds how long a single underlying Read call blocks, so
// Receive can enforce its own overall deadline instead of trusting the
// driver's timeout semantics on a zero-byte read.
const pollInterval = 50 * time.Millisecond

// Config describes how to open a physical UART link to the head of a
// chain.
type Config struct {
	Port     string
	BaudRate int
}

// Serial is the Transport implementation for a real chain: a UART port
// opened with a command-configured baud rate. Power is toggled on the
// RTS line, the way a controlled-power serial hub exposes it.
type Serial struct {
	port    serial.Port
	codec   *packet.Codec
	powered bool
}

// Open opens cfg.Port at cfg.BaudRate, 8 data bits, no parity, one stop
// bit — the line configuration every board in this platform expects.
func Open(cfg Config, codec *packet.Codec) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: could not open serial port %q: %w", cfg.Port, err)
	}

	return &Serial{port: port, codec: codec}, nil
}

func (s *Serial) PowerOn() error {
	if err := s.port.SetRTS(true); err != nil {
		return fmt.Errorf("transport: could not power on: %w", err)
	}
	s.powered = true
	return nil
}

func (s *Serial) PowerOff() error {
	if err := s.port.SetRTS(false); err != nil {
		return fmt.Errorf("transport: could not power off: %w", err)
	}
	s.powered = false
	return nil
}

func (s *Serial) Powered() bool { return s.powered }

// Send writes p's wire form in a single call. p must already be
// Finalized.
func (s *Serial) Send(p packet.Packet) error {
	if !s.powered {
		return ErrPortOff
	}
	raw, err := s.codec.Encode(p)
	if err != nil {
		return fmt.Errorf("transport: could not encode packet: %w", err)
	}
	if _, err := s.port.Write(raw); err != nil {
		return fmt.Errorf("transport: could not write packet: %w", err)
	}
	return nil
}

// Receive blocks until a full packet has been read or deadline elapses.
// A partial read on timeout is discarded; the next call starts clean.
//
// go.bug.st/serial reports a timed-out Read as (0, nil), not an error, so
// io.ReadFull cannot be trusted to unblock on its own: it would spin
// forever accumulating zero bytes. Receive polls the port itself and
// enforces deadline against the wall clock.
func (s *Serial) Receive(deadline time.Duration) (packet.Packet, error) {
	if !s.powered {
		return packet.Packet{}, ErrPortOff
	}
	if err := s.port.SetReadTimeout(pollInterval); err != nil {
		return packet.Packet{}, fmt.Errorf("transport: could not set read timeout: %w", err)
	}

	buf := make([]byte, s.codec.Size())
	start := time.Now()
	n := 0
	for n < len(buf) && time.Since(start) < deadline {
		m, err := s.port.Read(buf[n:])
		if err != nil {
			return packet.Packet{}, fmt.Errorf("transport: could not read packet: %w", err)
		}
		n += m
	}
	if n < len(buf) {
		return packet.Packet{}, ErrTimedOut
	}

	return s.codec.Decode(buf)
}

func (s *Serial) Close() error {
	return s.port.Close()
}
