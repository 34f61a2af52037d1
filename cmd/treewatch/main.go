// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command treewatch watches a directory tree and prints one line per change
// to files matching the given filters, until interrupted.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/willabides/kongplete"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/syncthing/treewatch/lib/config"
	"github.com/syncthing/treewatch/lib/events"
	"github.com/syncthing/treewatch/lib/logger"
	"github.com/syncthing/treewatch/lib/session"
)

var l = logger.DefaultLogger.NewFacility("main", "Main package")

type cli struct {
	Path          string `arg:"" help:"Directory to watch" type:"path"`
	Filters       string `help:"Filter specification, for example \"(txt|pdf)\"" env:"TREEWATCH_FILTERS"`
	Backend       string `help:"Notification backend (notify, fsnotify)"`
	BufferSize    int    `help:"Event buffer size per watch root, in bytes"`
	Config        string `help:"YAML options file" type:"existingfile" placeholder:"FILE"`
	MetricsListen string `help:"Serve Prometheus metrics on this address" placeholder:"ADDR"`
	JSON          bool   `name:"json" help:"Print events as JSON objects"`
	ShortNames    bool   `help:"Include the short name of each path"`
	Trace         string `help:"Comma separated debug facilities, or \"all\"" env:"TWTRACE"`
}

func main() {
	var params cli
	parser := kong.Must(&params, kong.Description("Watch a directory tree and print change events."))
	kongplete.Complete(parser)
	if _, err := parser.Parse(os.Args[1:]); err != nil {
		parser.FatalIfErrorf(err)
	}

	if err := run(params, os.Stdout); err != nil {
		l.Warnln(err)
		os.Exit(1)
	}
}

func run(params cli, out io.Writer) error {
	if _, err := maxprocs.Set(maxprocs.Logger(l.Debugf)); err != nil {
		l.Debugln("maxprocs:", err)
	}
	if params.Trace != "" {
		logger.DefaultLogger.SetTrace(params.Trace)
	}

	opts, err := params.options()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if params.MetricsListen != "" {
		go serveMetrics(ctx, params.MetricsListen)
	}

	s, err := session.New(ctx, params.Path, opts.Filters, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	go func() {
		<-ctx.Done()
		s.Interrupt()
	}()

	p := &printer{out: out, json: params.JSON, session: s, shortNames: params.ShortNames}
	for {
		ev, ok := s.BlockingPoll()
		if ctx.Err() != nil {
			return nil
		}
		if !ok {
			continue
		}
		if err := p.print(ev); err != nil {
			return err
		}
	}
}

// options layers the config file, the environment and the command line
// over the defaults, in that order.
func (c cli) options() (config.Options, error) {
	opts := config.Default()
	if c.Config != "" {
		var err error
		if opts, err = config.Load(c.Config); err != nil {
			return config.Options{}, err
		}
	}
	opts, err := config.FromEnv(opts)
	if err != nil {
		return config.Options{}, err
	}
	if c.Backend != "" {
		opts.Backend = config.Backend(c.Backend)
	}
	if c.BufferSize != 0 {
		opts.BufferSize = c.BufferSize
	}
	if c.Filters != "" {
		opts.Filters = c.Filters
	}
	return opts, opts.Validate()
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Warnln("Metrics listener:", err)
	}
}

type printer struct {
	out        io.Writer
	json       bool
	shortNames bool
	session    *session.Session
}

type jsonEvent struct {
	events.Event
	Short string `json:"short,omitempty"`
}

func (p *printer) print(wire string) error {
	if !p.json && !p.shortNames {
		_, err := fmt.Fprintln(p.out, wire)
		return err
	}

	ev, err := events.ParseEvent(wire)
	if err != nil {
		return err
	}
	var short string
	if p.shortNames {
		short = p.session.ShortPath(ev.Path)
	}

	if p.json {
		return json.NewEncoder(p.out).Encode(jsonEvent{Event: ev, Short: short})
	}
	_, err = fmt.Fprintf(p.out, "%s|%s\n", wire, short)
	return err
}
