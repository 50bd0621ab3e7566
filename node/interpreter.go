// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

// Interpreter is the embedded byte-code engine LOAD/EXEC/RETR transport
// source text into and status/output out of. It is intentionally opaque:
// the protocol never looks inside a program or its output.
type Interpreter interface {
	// Load hands the engine the source text to evaluate. A Node passes
	// its whole LOAD staging region on every EXEC, not just new chunks.
	Load(src []byte) error
	// Exec evaluates the staged source. If reset is true, the output
	// write pointer is rewound to zero before evaluation. It returns the
	// interpreter's own return code.
	Exec(reset bool) (code int, err error)
	// Output returns everything written by the most recent Exec calls
	// since the last reset.
	Output() []byte
}

// NullInterpreter is a no-op Interpreter: Load is a no-op, Exec always
// succeeds with code 0 and produces no output. It is the default for any
// Node that hasn't been wired to a real byte-code engine, and is what the
// test suite and simulator use.
type NullInterpreter struct{}

func (NullInterpreter) Load([]byte) error            { return nil }
func (NullInterpreter) Exec(bool) (int, error)       { return 0, nil }
func (NullInterpreter) Output() []byte               { return nil }
