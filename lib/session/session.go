// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package session ties the watch roots, the event queue and the short name
// cache of one watched tree together behind the operations exposed to the
// host.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/syncthing/treewatch/lib/config"
	"github.com/syncthing/treewatch/lib/events"
	"github.com/syncthing/treewatch/lib/filter"
	"github.com/syncthing/treewatch/lib/fs"
	"github.com/syncthing/treewatch/lib/shortname"
	"github.com/syncthing/treewatch/lib/watch"
)

// ErrActive is returned by New while another session is open.
var ErrActive = errors.New("a session is already active")

// Only one session may be open per process.
var active atomic.Bool

type Session struct {
	root    string
	filters *filter.Set
	cache   *shortname.Cache
	queue   *events.Queue
	roots   *watch.RootSet
	cancel  context.CancelFunc

	closeOnce sync.Once
}

// New starts watching root for changes to files matching filterSpec.
// Errors while discovering the tree are logged; the session is returned
// and serves events from whatever roots were established. Only a second
// concurrent session is refused.
func New(ctx context.Context, root, filterSpec string, opts config.Options) (*Session, error) {
	return newSession(ctx, root, filterSpec, opts, shortname.New())
}

func newSession(ctx context.Context, root, filterSpec string, opts config.Options, cache *shortname.Cache) (*Session, error) {
	if !active.CompareAndSwap(false, true) {
		return nil, ErrActive
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		root:    fs.Canonical(root),
		filters: filter.Parse(filterSpec),
		queue:   events.NewQueue(),
		cancel:  cancel,
	}
	if opts.ShortNames {
		s.cache = cache
	}

	roots, err := watch.Build(ctx, s.root, s.filters, s.cache, s.queue, opts)
	s.roots = roots
	if err != nil {
		l.Warnf("Initializing watch on %s: %v", s.root, err)
	}
	l.Infof("Watching %s (%d roots, filters %v)", s.root, s.roots.Len(), s.filters.Extensions())
	return s, nil
}

// Poll returns the next event in wire format without waiting.
func (s *Session) Poll() (string, bool) {
	ev, ok := s.queue.TryPop()
	if !ok {
		return "", false
	}
	return ev.String(), true
}

// BlockingPoll waits for the next event. It returns no event when woken by
// Interrupt or when the queue turned out to be empty; callers retry.
func (s *Session) BlockingPoll() (string, bool) {
	ev, ok := s.queue.BlockingPop()
	if !ok {
		return "", false
	}
	return ev.String(), true
}

// WaitEvent is BlockingPoll that also returns when ctx is done.
func (s *Session) WaitEvent(ctx context.Context) (string, bool, error) {
	ev, ok, err := s.queue.Wait(ctx)
	if !ok {
		return "", false, err
	}
	return ev.String(), true, nil
}

// Interrupt wakes a pending BlockingPoll without an event.
func (s *Session) Interrupt() {
	s.queue.Interrupt()
}

// Close stops all watches and releases waiters. Further polls return no
// events. A new session may be created afterwards.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.roots.Stop()
		s.cancel()
		s.queue.Close()
		active.Store(false)
		l.Infoln("Stopped watching", s.root)
	})
	return nil
}

// ShortPath returns the short name form of path, from the OS or from names
// seen earlier in this session, or the canonical path if there is none.
func (s *Session) ShortPath(path string) string {
	if s.cache == nil {
		return fs.Canonical(path)
	}
	return s.cache.Resolve(path)
}

// Root returns the canonical path of the watched tree.
func (s *Session) Root() string {
	return s.root
}

// Roots returns the paths of all watch roots, the primary root first.
func (s *Session) Roots() []string {
	var paths []string
	for _, r := range s.roots.Roots() {
		paths = append(paths, r.Path())
	}
	return paths
}

func (s *Session) Filters() *filter.Set {
	return s.filters
}

// FullPath returns the canonical absolute form of path.
func FullPath(path string) string {
	return fs.Canonical(path)
}
