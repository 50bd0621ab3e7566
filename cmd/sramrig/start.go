// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sramlab/sramrig/config"
	"github.com/sramlab/sramrig/dispatch"
	"github.com/sramlab/sramrig/logsink"
	"github.com/sramlab/sramrig/packet"
	"github.com/sramlab/sramrig/reader"
	"github.com/sramlab/sramrig/store"
	"github.com/sramlab/sramrig/transport"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the dispatcher loop for every configured chain",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return configError{err}
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("sramrig: could not open sample store: %w", err)
	}
	defer db.Close()

	sink := buildSink(cfg)

	grp, ctx := errgroupFromBackground()
	for _, chainCfg := range cfg.Chains {
		chainCfg := chainCfg
		grp.Go(func() error {
			return runChain(ctx, chainCfg, db, sink)
		})
	}
	return grp.Wait()
}

func errgroupFromBackground() (*errgroup.Group, context.Context) {
	grp, ctx := errgroup.WithContext(context.Background())
	return grp, ctx
}

func buildSink(cfg config.Config) *logsink.Sink {
	sink := logsink.NewSink()
	sink.Add(logsink.NewTerminal(os.Stdout), logsink.LevelDebug, logsink.LevelError+1)

	if cfg.LogFile != nil {
		if cfg.LogFile.RotatePer > 0 {
			f, err := logsink.NewTimeRotatingFile(cfg.LogFile.Path, cfg.LogFile.RotatePer)
			if err == nil {
				sink.Add(f, logsink.LevelInfo, logsink.LevelError+1)
			}
		} else if cfg.LogFile.MaxBytes > 0 {
			f, err := logsink.NewRotatingFile(cfg.LogFile.Path, cfg.LogFile.MaxBytes)
			if err == nil {
				sink.Add(f, logsink.LevelInfo, logsink.LevelError+1)
			}
		}
	}
	if cfg.Mailer != nil {
		m := logsink.NewMailer(cfg.Mailer.Host, cfg.Mailer.Port, cfg.Mailer.User, cfg.Mailer.Pass, cfg.Mailer.From, cfg.Mailer.Subject, cfg.Mailer.To)
		sink.Add(m, logsink.LevelError, logsink.LevelError+1)
	}
	if cfg.ChatBot != nil {
		sink.Add(logsink.NewChatBot(cfg.ChatBot.Webhook), logsink.LevelWarning, logsink.LevelError+1)
	}

	return sink
}

func runChain(ctx context.Context, chainCfg config.Chain, db *store.DB, sink *logsink.Sink) error {
	codec := packet.NewCodec(chainCfg.BlockSize)

	link, err := transport.Open(transport.Config{Port: chainCfg.Port, BaudRate: chainCfg.BaudRate}, codec)
	if err != nil {
		return fmt.Errorf("sramrig: chain %q: could not open transport: %w", chainCfg.Name, err)
	}
	defer link.Close()

	opts := []reader.Option{
		reader.WithBoardKind(chainCfg.BoardKind),
		reader.WithName(chainCfg.Name),
		reader.WithSampleStore(db),
		reader.WithEventSink(sink),
	}
	if len(chainCfg.Capabilities) > 0 {
		caps := make([]reader.Capability, len(chainCfg.Capabilities))
		for i, c := range chainCfg.Capabilities {
			caps[i] = reader.Capability(c)
		}
		opts = append(opts, reader.WithCapabilities(caps...))
	}
	rd := reader.New(link, codec, opts...)

	flagCmd := flags.New()
	app := tdaq.New(flagCmd, os.Stdout)

	d := dispatch.New(app, sink, chainCfg.Name)
	d.AttachBroker("/events", logsink.NewBroker(256))
	dispatch.BindReader(d, rd)

	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("sramrig: chain %q: dispatcher exited: %w", chainCfg.Name, err)
	}
	return nil
}
