// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logsink

import (
	"fmt"
	"log"
	"os"
)

// route pairs an Output with the level window in which it participates:
// an event at Level is emitted to it iff MinLevel <= Level < MaxLevel.
type route struct {
	out      Output
	minLevel Level
	maxLevel Level
}

// Sink fans one Event out to every registered Output whose level window
// admits it. It is safe for concurrent use by multiple Readers.
type Sink struct {
	routes []route
	errLog *log.Logger
}

// NewSink returns an empty Sink. Errors raised by individual outputs are
// themselves logged, never propagated, so one misbehaving output cannot
// starve the others.
func NewSink() *Sink {
	return &Sink{errLog: log.New(os.Stderr, "sramrig: logsink: ", 0)}
}

// Add registers out to receive events with minLevel <= level < maxLevel.
// Pass LevelDebug/math.MaxInt32-ish bounds (or the Level constants
// directly) to admit everything.
func (s *Sink) Add(out Output, minLevel, maxLevel Level) {
	s.routes = append(s.routes, route{out: out, minLevel: minLevel, maxLevel: maxLevel})
}

// Emit delivers e to every admitting output. An output failure is logged
// and does not stop delivery to the rest.
func (s *Sink) Emit(e Event) {
	for _, r := range s.routes {
		if e.Level < r.minLevel || e.Level >= r.maxLevel {
			continue
		}
		if err := r.out.Emit(e); err != nil {
			s.errLog.Printf("output %T: could not emit event: %+v", r.out, fmt.Errorf("logsink: %w", err))
		}
	}
}
