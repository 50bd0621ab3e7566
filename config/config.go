// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the JSON configuration one sramrig deployment
// starts from: which serial port to drive, at what baud, what board_kind
// and capability set the Reader exposes, and how its events should be
// routed.
package config // import "github.com/sramlab/sramrig/config"

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Chain describes one serial link and the Reader that drives it.
type Chain struct {
	Name         string   `json:"name"`
	Port         string   `json:"port"`
	BaudRate     int      `json:"baud_rate"`
	BlockSize    int      `json:"block_size"`
	BoardKind    string   `json:"board_kind"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Mailer configures the transactional email output.
type Mailer struct {
	Host    string   `json:"host"`
	Port    int      `json:"port"`
	User    string   `json:"user"`
	Pass    string   `json:"pass"`
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	To      []string `json:"to"`
}

// ChatBot configures the outgoing webhook output.
type ChatBot struct {
	Webhook string `json:"webhook"`
}

// LogFile configures a rotating or time-rotating file output.
type LogFile struct {
	Path       string        `json:"path"`
	MaxBytes   int64         `json:"max_bytes,omitempty"`
	RotatePer  time.Duration `json:"rotate_per,omitempty"`
}

// Config is the top-level deployment configuration.
type Config struct {
	Database string    `json:"database"`
	Chains   []Chain   `json:"chains"`
	Mailer   *Mailer   `json:"mailer,omitempty"`
	ChatBot  *ChatBot  `json:"chat_bot,omitempty"`
	LogFile  *LogFile  `json:"log_file,omitempty"`
}

// Load reads and decodes the configuration file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: could not open %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: could not decode %q: %w", path, err)
	}
	if len(cfg.Chains) == 0 {
		return Config{}, fmt.Errorf("config: %q declares no chains", path)
	}
	for i, c := range cfg.Chains {
		if c.Port == "" {
			return Config{}, fmt.Errorf("config: chain %d (%q) has no serial port", i, c.Name)
		}
		if c.BlockSize <= 0 {
			return Config{}, fmt.Errorf("config: chain %d (%q) has a non-positive block size", i, c.Name)
		}
	}
	return cfg, nil
}
