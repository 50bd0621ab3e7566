// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dispatch wires a Reader's capability methods to a message
// broker subscription: incoming command records are routed by pattern
// match to every bound handler, and each non-empty handler result is
// published as an event record.
package dispatch // import "github.com/sramlab/sramrig/dispatch"

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-daq/tdaq"

	"github.com/sramlab/sramrig/logsink"
)

// CommandRecord is one inbound broker record: at minimum a "command"
// field naming the operation, plus whatever fields that operation
// needs.
type CommandRecord map[string]interface{}

// CommandPattern matches a CommandRecord by subset: every key present in
// the pattern must be present and equal in the record; extra fields in
// the record are ignored.
type CommandPattern map[string]interface{}

func (p CommandPattern) matches(rec CommandRecord) bool {
	for k, want := range p {
		got, ok := rec[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Handler reacts to a matched CommandRecord and returns the value to
// publish as the result, or an error. A nil, non-error result is not
// published.
type Handler func(rec CommandRecord) (interface{}, error)

type binding struct {
	pattern CommandPattern
	handler Handler
}

// Dispatcher holds a configured broker subscription: a *tdaq.Server plus
// the ordered list of pattern → handler bindings registered against it.
type Dispatcher struct {
	app      *tdaq.Server
	sink     *logsink.Sink
	broker   *logsink.Broker
	bindings []binding
	source   string
}

// New wraps app (already created with tdaq.New), publishing events
// through sink and, once AttachBroker has been called, also republishing
// them on the topic it wired.
func New(app *tdaq.Server, sink *logsink.Sink, source string) *Dispatcher {
	d := &Dispatcher{app: app, sink: sink, source: source}
	d.app.CmdHandle("/command", d.onCommand)
	return d
}

// AttachBroker registers b as this Dispatcher's event-republishing
// output topic, the producer side of its Emit/OutputHandle pair.
func (d *Dispatcher) AttachBroker(topic string, b *logsink.Broker) {
	d.broker = b
	d.app.OutputHandle(topic, b.OutputHandle)
}

// AddCommand binds pattern to handler. A record may be multiply bound:
// every matching handler runs, in the order bindings were registered.
func (d *Dispatcher) AddCommand(pattern CommandPattern, handler Handler) {
	d.bindings = append(d.bindings, binding{pattern: pattern, handler: handler})
}

// Run starts the underlying broker run loop. It blocks until ctx is
// canceled or the broker signals shutdown.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.app.Run(ctx); err != nil {
		return fmt.Errorf("dispatch: broker run loop exited: %w", err)
	}
	return nil
}

func (d *Dispatcher) onCommand(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	var rec CommandRecord
	if err := json.Unmarshal(req.Body, &rec); err != nil {
		d.emitError(fmt.Errorf("dispatch: could not decode command record: %w", err))
		return fmt.Errorf("dispatch: could not decode command record: %w", err)
	}

	results := d.Execute(rec)

	body, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("dispatch: could not encode response: %w", err)
	}
	resp.Body = body
	return nil
}

// Execute runs rec against every bound handler whose pattern matches it,
// in registration order, and emits one result or error event per match
// that returns a non-nil result or an error.
// It is the same path onCommand takes for an inbound broker frame, also
// usable to run a single command record outside of the broker loop.
func (d *Dispatcher) Execute(rec CommandRecord) []interface{} {
	var results []interface{}
	for _, b := range d.bindings {
		if !b.pattern.matches(rec) {
			continue
		}
		result, err := b.handler(rec)
		if err != nil {
			d.emit(logsink.Event{
				Status:     logsink.StatusError,
				Msg:        map[string]interface{}{"command": rec, "error": err.Error()},
				Level:      logsink.LevelError,
				SourceName: d.source,
			})
			continue
		}
		if result == nil {
			continue
		}
		results = append(results, result)
		d.emit(logsink.Event{
			Status:     logsink.StatusOK,
			Msg:        map[string]interface{}{"command": rec, "result": result},
			Level:      logsink.LevelInfo,
			SourceName: d.source,
		})
	}
	return results
}

func (d *Dispatcher) emitError(err error) {
	d.emit(logsink.Event{
		Status:     logsink.StatusError,
		Msg:        err.Error(),
		Level:      logsink.LevelError,
		SourceName: d.source,
	})
}

func (d *Dispatcher) emit(e logsink.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if d.sink != nil {
		d.sink.Emit(e)
	}
	if d.broker != nil {
		_ = d.broker.Emit(e)
	}
}
