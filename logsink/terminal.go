// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logsink

import (
	"io"
	"log"
)

// Terminal writes events as single lines to an io.Writer, the way every
// cmd/ binary in this platform logs to stdout by default.
type Terminal struct {
	msg *log.Logger
}

// NewTerminal wraps w with the platform's standard log prefix.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{msg: log.New(w, "sramrig: ", log.LstdFlags)}
}

func (t *Terminal) Emit(e Event) error {
	t.msg.Printf("[%s] %s: %v", e.Level, e.SourceName, e.Msg)
	return nil
}
