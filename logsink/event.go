// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logsink fans out structured event records produced by a Reader
// to a configurable set of outputs: a message broker topic, a terminal
// stream, rotating log files, transactional email, and a chat-bot
// webhook. A failing output never blocks the others.
package logsink // import "github.com/sramlab/sramrig/logsink"

import "time"

// Level orders event severity, low to high.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Status is the coarse outcome carried by an Event, independent of Level
// (a WARNING-level event still reports an overall command status).
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// Event is one broker event record: the original command's outcome, or a
// standalone diagnostic raised while executing one.
type Event struct {
	Status     Status
	Msg        interface{}
	Level      Level
	SourceName string
	Timestamp  time.Time
}

// Output accepts Events filtered by MinLevel/MaxLevel.
type Output interface {
	Emit(e Event) error
}
