// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sramlab/sramrig"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "sramrig",
	Short: "Drive and monitor SRAM rig chains",
	Long: `sramrig runs the station-side process for a deployment: one dispatcher
per serial chain, each bound to a Reader that drives the chain's
devices and emits events to the configured log outputs.`,
	Version: versionString(),
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "sramrig.json", "path to the deployment configuration file")
}

// versionString reports the module version embedded by the Go toolchain
// at build time. It falls back to "dev" for a binary built without
// module support (e.g. go build with GOFLAGS=-mod=vendor against a
// non-module checkout), where sramrig.Version has nothing to read.
func versionString() string {
	version, sum := sramrig.Version()
	if version == "" {
		return "dev"
	}
	if sum == "" {
		return version
	}
	return version + " (" + sum + ")"
}

// configError marks an error that should exit with exitConfigErr rather
// than exitIOErr: malformed configuration, not a transport failure.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func isConfigError(err error) bool {
	var ce configError
	return errors.As(err, &ce)
}
