// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sbinet/pmon"
	"github.com/spf13/cobra"

	"github.com/sramlab/sramrig/logsink"
	"github.com/sramlab/sramrig/node"
	"github.com/sramlab/sramrig/packet"
	"github.com/sramlab/sramrig/reader"
	"github.com/sramlab/sramrig/transport"
)

var (
	simDevices  int
	simSRAM     int
	simBlock    int
	simMonitor  bool
	simMonFreq  time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive an in-process chain of simulated devices, no hardware required",
	Long: `simulate builds a chain of simulated devices wired back-to-back in
one process (see the transport package's Sim), runs the platform's normal
discovery and read sequence against it, and prints what a Reader would
see on real hardware. It exists for local development and demos.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simDevices, "devices", 3, "number of simulated devices in the chain")
	simulateCmd.Flags().IntVar(&simSRAM, "sram-size", 4096, "SRAM bank size per device, in bytes")
	simulateCmd.Flags().IntVar(&simBlock, "block-size", 32, "wire block size, in bytes")
	simulateCmd.Flags().BoolVar(&simMonitor, "pmon", false, "self-monitor this process with pmon while the demo runs")
	simulateCmd.Flags().DurationVar(&simMonFreq, "pmon-freq", time.Second, "pmon sampling frequency")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simMonitor {
		stop, err := startSelfMonitor(simMonFreq)
		if err != nil {
			return fmt.Errorf("sramrig: could not start pmon: %w", err)
		}
		defer stop()
	}

	codec := packet.NewCodec(simBlock)

	nodes := make([]*node.Node, simDevices)
	for i := range nodes {
		uid := fmt.Sprintf("SIM-DEVICE-%02d-----------", i)
		nodes[i] = node.New(uid, simSRAM, codec, node.NullInterpreter{})
	}

	sim := transport.NewSim(codec, nodes)
	if err := sim.PowerOn(); err != nil {
		return fmt.Errorf("sramrig: could not power on simulated chain: %w", err)
	}

	sink := logsink.NewSink()
	sink.Add(logsink.NewTerminal(os.Stderr), logsink.LevelDebug, logsink.LevelError+1)

	rd := reader.New(sim, codec,
		reader.WithName("simulate"),
		reader.WithEventSink(sink),
	)

	ping, err := rd.Ping()
	if err != nil {
		return fmt.Errorf("sramrig: discovery failed: %w", err)
	}
	printJSON("ping", ping)

	read, err := rd.Read()
	if err != nil {
		return fmt.Errorf("sramrig: read failed: %w", err)
	}
	printJSON("read", read)

	sensors, err := rd.Sensors()
	if err != nil {
		return fmt.Errorf("sramrig: sensors failed: %w", err)
	}
	printJSON("sensors", sensors)

	return nil
}

func printJSON(label string, v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "sramrig: could not encode %s result: %+v\n", label, err)
		return
	}
	fmt.Printf("%s:\n%s\n", label, out)
}

// startSelfMonitor runs pmon against this process's own pid for the
// duration of the demo, writing samples to sramrig-pmon.log.
func startSelfMonitor(freq time.Duration) (stop func(), err error) {
	p, err := pmon.Monitor(os.Getpid())
	if err != nil {
		return nil, fmt.Errorf("could not attach pmon to pid %d: %w", os.Getpid(), err)
	}
	f, err := os.Create("sramrig-pmon.log")
	if err != nil {
		return nil, fmt.Errorf("could not create pmon log file: %w", err)
	}
	p.W = f
	p.Freq = freq

	go func() {
		if err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "sramrig: pmon stopped: %+v\n", err)
		}
	}()

	return func() {
		if err := p.Kill(); err != nil {
			fmt.Fprintf(os.Stderr, "sramrig: could not stop pmon: %+v\n", err)
		}
		f.Close()
	}, nil
}
