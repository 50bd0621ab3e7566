// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sramrig holds the chain protocol stack for the SRAM PUF
// acquisition platform: packet codec, device node runtime, serial
// transport, chain membership, reader, dispatcher and log sink.
package sramrig // import "github.com/sramlab/sramrig"

import (
	"fmt"
	"runtime/debug"
)

// moduleRoot is this module's own import path, the thing Version looks
// up in its own build info. It shows up under Deps rather than Main
// whenever the sramrig binary was produced by "go install .../cmd/
// sramrig@version" — the common way this CLI actually gets installed —
// since then the temporary wrapper main module is what Main describes.
const moduleRoot = "github.com/sramlab/sramrig"

// Version reports the version of sramrig and its checksum, as recorded
// in the running binary's own build info. Both are empty for a binary
// built without module support, or for this module's own entry missing
// from that build info entirely.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return versionOf(b)
}

func versionOf(b *debug.BuildInfo) (version, sum string) {
	if b == nil {
		return "", ""
	}
	mod := findDep(b.Deps, moduleRoot)
	if mod == nil {
		return "", ""
	}
	return resolvedVersion(mod)
}

func findDep(deps []*debug.Module, path string) *debug.Module {
	for _, m := range deps {
		if m.Path == path {
			return m
		}
	}
	return nil
}

// resolvedVersion reports the version/sum a build actually used for m,
// following a local "replace" directive to whatever it points at
// instead of the declared dependency version.
func resolvedVersion(m *debug.Module) (version, sum string) {
	r := m.Replace
	if r == nil {
		return m.Version, m.Sum
	}
	switch {
	case r.Path != "" && r.Version != "":
		return fmt.Sprintf("%s %s", r.Path, r.Version), r.Sum
	case r.Version != "":
		return r.Version, r.Sum
	case r.Path != "":
		return r.Path, r.Sum
	default:
		// A replace directive with neither a path nor a version points
		// at an on-disk module with no version control behind it; m's
		// own pseudo-version is all there is, flagged as unverifiable.
		return m.Version + "*", ""
	}
}
