// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package svcutil adapts plain functions to suture services and builds the
// supervisor specs used across treewatch.
package svcutil

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/syncthing/treewatch/lib/logger"
)

var l = logger.DefaultLogger.NewFacility("svcutil", "Service supervision")

// ServiceTimeout bounds how long a stopping supervisor waits for a root
// loop to return.
const ServiceTimeout = 10 * time.Second

// NoRestartErr wraps err (which may be nil) so that
// errors.Is(err, suture.ErrDoNotRestart) holds.
func NoRestartErr(err error) error {
	if err == nil {
		return suture.ErrDoNotRestart
	}
	return &noRestartErr{err}
}

type noRestartErr struct {
	err error
}

func (e *noRestartErr) Error() string {
	return e.err.Error()
}

func (e *noRestartErr) Unwrap() error {
	return e.err
}

func (e *noRestartErr) Is(target error) bool {
	return target == suture.ErrDoNotRestart
}

// AsService wraps fn as a named suture.Service, so supervisor events
// identify which watch root they concern.
func AsService(fn func(ctx context.Context) error, name string) suture.Service {
	return &service{
		name:  name,
		serve: fn,
	}
}

type service struct {
	name  string
	serve func(ctx context.Context) error
}

func (s *service) Serve(ctx context.Context) error {
	err := s.serve(ctx)
	if err != nil && ctx.Err() == nil {
		l.Debugf("%s: %v", s.name, err)
	}
	return err
}

func (s *service) String() string {
	return s.name
}

type doneService func()

func (fn doneService) Serve(ctx context.Context) error {
	<-ctx.Done()
	fn()
	return nil
}

// OnSupervisorDone calls fn when sup stops.
func OnSupervisorDone(sup *suture.Supervisor, fn func()) {
	sup.Add(doneService(fn))
}

// SpecWithWarnLogger returns a supervisor spec that reports service
// failures and panics as warnings and everything else at debug level.
// Panics in services are recovered and the service restarted; the process
// may be a host application the watcher is loaded into.
func SpecWithWarnLogger(l logger.Logger) suture.Spec {
	return spec(func(e suture.Event) {
		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate, suture.EventTypeBackoff:
			l.Warnln(e)
		default:
			l.Debugln(e)
		}
	})
}

func spec(eventHook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook: eventHook,
		Timeout:   ServiceTimeout,
	}
}
