// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package watch

import (
	"errors"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/syncthing/treewatch/lib/events"
	"github.com/syncthing/treewatch/lib/filter"
	"github.com/syncthing/treewatch/lib/fs"
	"github.com/syncthing/treewatch/lib/shortname"
)

// Warnings from one root are limited to one per interval; the rest go to
// the debug log.
const warnInterval = 10 * time.Second

// A Root is one recursive watch. Events are reported relative to Path even
// though the watch is placed on Target, which differs from Path when Path
// is or passes through a link.
type Root struct {
	path    string
	target  string
	primary bool

	filters *filter.Set
	cache   *shortname.Cache
	queue   *events.Queue
	backend string
	warn    *rate.Limiter

	w watcher
}

func newRoot(path string, primary bool, filters *filter.Set, cache *shortname.Cache, queue *events.Queue) *Root {
	path = fs.Canonical(path)
	return &Root{
		path:    path,
		target:  fs.Resolve(path),
		primary: primary,
		filters: filters,
		cache:   cache,
		queue:   queue,
		warn:    rate.NewLimiter(rate.Every(warnInterval), 1),
	}
}

// Path is the canonical path events are reported under.
func (r *Root) Path() string {
	return r.path
}

// Target is the canonical path of the directory actually watched.
func (r *Root) Target() string {
	return r.target
}

// Primary is true for the root the session was created with and false for
// roots added for links found below it.
func (r *Root) Primary() bool {
	return r.primary
}

func (r *Root) String() string {
	if r.path == r.target {
		return r.path
	}
	return r.path + " -> " + r.target
}

func (r *Root) start(b Backend, bufferSize int) error {
	r.backend = b.String()
	w, err := b.watch(r.target, bufferSize, r)
	if err != nil {
		return setupError(r.path, err)
	}
	r.w = w
	l.Debugf("watching %v with %v", r, b)
	return nil
}

func (r *Root) stop() {
	if r.w == nil {
		return
	}
	if err := r.w.Close(); err != nil {
		l.Debugln("closing watch", r, err)
	}
}

func (r *Root) created(native string) {
	metricBackendEvents.WithLabelValues(r.backend, "created").Inc()
	path, ok := r.resolve(native)
	if !ok {
		return
	}
	r.upsert(path)
	r.push(path, events.Created)
}

func (r *Root) changed(native string) {
	metricBackendEvents.WithLabelValues(r.backend, "changed").Inc()
	path, ok := r.resolve(native)
	if !ok {
		return
	}
	r.push(path, events.Modified)
}

// deleted keeps the short name entry; callers may still ask for the short
// name of a file that is already gone.
func (r *Root) deleted(native string) {
	metricBackendEvents.WithLabelValues(r.backend, "deleted").Inc()
	path, ok := r.resolve(native)
	if !ok {
		return
	}
	r.push(path, events.Deleted)
}

func (r *Root) renamed(native string) {
	metricBackendEvents.WithLabelValues(r.backend, "renamed").Inc()
	path, ok := r.resolve(native)
	if !ok {
		return
	}
	r.push(path, events.Modified)
	r.upsert(path)
}

func (r *Root) failed(err error) {
	typ := "error"
	if errors.Is(err, ErrOverflow) {
		typ = "overflow"
	}
	metricErrors.WithLabelValues(r.backend, typ).Inc()
	if r.warn.Allow() {
		l.Warnf("Watching %s: %v", r.path, err)
	} else {
		l.Debugf("watching %s: %v", r.path, err)
	}
}

// resolve maps a native path from the backend to its canonical path under
// r.path and applies the name filter.
func (r *Root) resolve(native string) (string, bool) {
	if !utf8.ValidString(native) {
		l.Debugf("ignoring invalid UTF-8 path %q", native)
		return "", false
	}
	path := fs.Rebase(fs.FromNative(native), r.target, r.path)
	if !r.filters.Accept(path) {
		metricFiltered.Inc()
		return "", false
	}
	return path, true
}

func (r *Root) upsert(path string) {
	if r.cache != nil {
		r.cache.Upsert(path)
	}
}

func (r *Root) push(path string, kind events.Kind) {
	ev := events.Event{Path: path, Kind: kind}
	l.Debugln(r.path, "event", ev)
	r.queue.Push(ev)
}
