// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sramrig runs and talks to this platform's station-side
// process: one binary hosting both "start" (the dispatcher loop) and
// "send" (run command records against one chain's Reader in-process,
// over a transport it opens itself; it does not publish to the broker or
// reach a running dispatcher).
package main // import "github.com/sramlab/sramrig/cmd/sramrig"

import (
	"fmt"
	"os"
)

// Exit codes, per the platform's CLI contract.
const (
	exitOK        = 0
	exitConfigErr = 1
	exitIOErr     = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sramrig: %+v\n", err)
		os.Exit(exitCodeFor(err))
	}
	os.Exit(exitOK)
}

func exitCodeFor(err error) int {
	switch {
	case isConfigError(err):
		return exitConfigErr
	default:
		return exitIOErr
	}
}
