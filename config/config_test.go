// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sramlab/sramrig/config"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("could not write temp config: %+v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, `{
		"database": "sramrig",
		"chains": [{"name": "chain-0", "port": "/dev/ttyUSB0", "baud_rate": 115200, "block_size": 1024, "board_kind": "nucleo"}]
	}`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %+v", err)
	}
	if len(cfg.Chains) != 1 || cfg.Chains[0].Port != "/dev/ttyUSB0" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsNoChains(t *testing.T) {
	path := writeTemp(t, `{"database": "sramrig", "chains": []}`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected an error for a config with no chains")
	}
}

func TestLoadRejectsMissingPort(t *testing.T) {
	path := writeTemp(t, `{"database": "sramrig", "chains": [{"name": "chain-0", "block_size": 1024}]}`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected an error for a chain with no port")
	}
}
