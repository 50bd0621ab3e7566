// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logsink

import (
	"encoding/json"
	"fmt"

	"github.com/go-daq/tdaq"
)

// Broker republishes events on a tdaq output topic, the same
// OutputHandle-fed-by-channel pattern the teacher's RPi server uses for
// its ADC stream: Emit queues, OutputHandle is wired by the Dispatcher as
// the topic's producer and drains the queue as the broker pulls frames.
type Broker struct {
	ch chan []byte
}

// NewBroker returns a Broker with a bounded backlog of pending events.
func NewBroker(backlog int) *Broker {
	return &Broker{ch: make(chan []byte, backlog)}
}

func (b *Broker) Emit(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("logsink: could not encode event: %w", err)
	}
	select {
	case b.ch <- body:
		return nil
	default:
		return fmt.Errorf("logsink: broker output queue full, dropping event")
	}
}

// OutputHandle is registered with srv.OutputHandle by the Dispatcher that
// owns this Broker's *tdaq.Server, making it the topic's producer function.
func (b *Broker) OutputHandle(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case body := <-b.ch:
		dst.Body = body
	}
	return nil
}
