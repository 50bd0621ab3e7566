// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sramlab/sramrig/config"
	"github.com/sramlab/sramrig/dispatch"
	"github.com/sramlab/sramrig/logsink"
	"github.com/sramlab/sramrig/packet"
	"github.com/sramlab/sramrig/reader"
	"github.com/sramlab/sramrig/store"
	"github.com/sramlab/sramrig/transport"
)

var sendChainName string

var sendCmd = &cobra.Command{
	Use:   "send [command-record.json]",
	Short: "Run one command record against a configured chain",
	Long: `send drives one chain's Reader directly: it opens the chain's
transport, runs the given command record through the same pattern →
handler bindings "start" uses, prints the result, and exits.

With no argument, send starts an interactive prompt: one JSON object
per line, Ctrl-D to quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendChainName, "chain", "", "name of the chain to send to (required if more than one chain is configured)")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return configError{err}
	}

	chainCfg, err := selectChain(cfg, sendChainName)
	if err != nil {
		return configError{err}
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("sramrig: could not open sample store: %w", err)
	}
	defer db.Close()

	sink := logsink.NewSink()
	sink.Add(logsink.NewTerminal(os.Stderr), logsink.LevelDebug, logsink.LevelError+1)

	codec := packet.NewCodec(chainCfg.BlockSize)
	link, err := transport.Open(transport.Config{Port: chainCfg.Port, BaudRate: chainCfg.BaudRate}, codec)
	if err != nil {
		return fmt.Errorf("sramrig: could not open transport: %w", err)
	}
	defer link.Close()

	rd := reader.New(link, codec,
		reader.WithBoardKind(chainCfg.BoardKind),
		reader.WithName(chainCfg.Name),
		reader.WithSampleStore(db),
		reader.WithEventSink(sink),
	)

	flagCmd := flags.New()
	app := tdaq.New(flagCmd, io.Discard)
	d := dispatch.New(app, sink, chainCfg.Name)
	dispatch.BindReader(d, rd)

	if len(args) == 1 {
		return sendOne(d, args[0])
	}
	return sendInteractive(d)
}

func selectChain(cfg config.Config, name string) (config.Chain, error) {
	if name == "" {
		if len(cfg.Chains) == 1 {
			return cfg.Chains[0], nil
		}
		return config.Chain{}, fmt.Errorf("sramrig: --chain is required: %d chains are configured", len(cfg.Chains))
	}
	for _, c := range cfg.Chains {
		if c.Name == name {
			return c, nil
		}
	}
	return config.Chain{}, fmt.Errorf("sramrig: no chain named %q is configured", name)
}

func sendOne(d *dispatch.Dispatcher, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sramrig: could not read command record %q: %w", path, err)
	}
	return execAndPrint(d, raw)
}

// historyPath returns ~/.sramrig_history, falling back to an empty
// string (disabling persistence, not the prompt) if the home directory
// can't be resolved.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sramrig_history")
}

func sendInteractive(d *dispatch.Dispatcher) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	for {
		text, err := line.Prompt("sramrig> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("sramrig: could not read input: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)
		if histPath != "" {
			if f, err := os.Create(histPath); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}
		if err := execAndPrint(d, []byte(text)); err != nil {
			fmt.Fprintf(os.Stderr, "sramrig: %+v\n", err)
		}
	}
}

func execAndPrint(d *dispatch.Dispatcher, raw []byte) error {
	var rec dispatch.CommandRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("sramrig: could not decode command record: %w", err)
	}

	results := d.Execute(rec)
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("sramrig: could not encode results: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
