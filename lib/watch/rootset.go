// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package watch establishes the recursive watches of a session and turns
// their callbacks into queued events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/thejerf/suture/v4"

	"github.com/syncthing/treewatch/lib/config"
	"github.com/syncthing/treewatch/lib/events"
	"github.com/syncthing/treewatch/lib/filter"
	"github.com/syncthing/treewatch/lib/fs"
	"github.com/syncthing/treewatch/lib/shortname"
	"github.com/syncthing/treewatch/lib/svcutil"
)

var errStopped = errors.New("root set stopped")

// A RootSet owns the primary watch root of a session and one root per
// directory link found below it. The event loops of all roots run under a
// single supervisor.
type RootSet struct {
	backend    Backend
	bufferSize int

	sup      *suture.Supervisor
	cancel   context.CancelFunc
	done     <-chan error
	stopOnce sync.Once

	mut     sync.Mutex
	roots   []*Root
	stopped bool
}

// Build watches root and every directory link below it. The initial scan
// also seeds cache with the short names of all files matching filters.
//
// The first error aborts the remaining discovery. The set built so far is
// returned along with the error, its roots keep running and the caller is
// responsible for stopping it.
func Build(ctx context.Context, root string, filters *filter.Set, cache *shortname.Cache, queue *events.Queue, opts config.Options) (*RootSet, error) {
	b, err := backendFor(opts.Backend)
	if err != nil {
		return nil, err
	}
	return build(ctx, root, filters, cache, queue, opts, b)
}

func build(ctx context.Context, root string, filters *filter.Set, cache *shortname.Cache, queue *events.Queue, opts config.Options, b Backend) (*RootSet, error) {
	set := newRootSet(ctx, b, opts.BufferSize)

	path := fs.Canonical(root)
	info, err := os.Stat(fs.ToNative(path))
	if err != nil {
		return set, setupError(path, err)
	}
	if !info.IsDir() {
		return set, setupError(path, ErrNotDirectory)
	}
	if err := set.add(newRoot(path, true, filters, cache, queue)); err != nil {
		return set, err
	}

	seed := cache != nil && filters.Len() > 0
	if !seed && !opts.FollowLinks {
		return set, nil
	}

	err = fs.Walk(path, func(name string, kind fs.EntryKind) error {
		switch kind {
		case fs.KindFile:
			if seed && filters.Match(name) {
				cache.Upsert(name)
			}
		case fs.KindLinkDir:
			if opts.FollowLinks {
				return set.add(newRoot(name, false, filters, cache, queue))
			}
		}
		return nil
	})
	if err != nil {
		return set, fmt.Errorf("scanning %s: %w", path, err)
	}

	l.Debugf("watching %s with %d roots", path, set.Len())
	return set, nil
}

func newRootSet(ctx context.Context, b Backend, bufferSize int) *RootSet {
	ctx, cancel := context.WithCancel(ctx)
	s := &RootSet{
		backend:    b,
		bufferSize: bufferSize,
		sup:        suture.New("watch", svcutil.SpecWithWarnLogger(l)),
		cancel:     cancel,
	}
	svcutil.OnSupervisorDone(s.sup, s.closeRoots)
	s.done = s.sup.ServeBackground(ctx)
	return s
}

func (s *RootSet) add(r *Root) error {
	if err := r.start(s.backend, s.bufferSize); err != nil {
		return err
	}

	s.mut.Lock()
	if s.stopped {
		s.mut.Unlock()
		r.stop()
		return setupError(r.path, errStopped)
	}
	s.roots = append(s.roots, r)
	s.mut.Unlock()

	s.sup.Add(svcutil.AsService(r.w.Serve, "watch "+r.String()))
	metricActiveRoots.Inc()
	return nil
}

// Roots returns the roots in the order they were established. The primary
// root is first.
func (s *RootSet) Roots() []*Root {
	if s == nil {
		return nil
	}
	s.mut.Lock()
	defer s.mut.Unlock()
	roots := make([]*Root, len(s.roots))
	copy(roots, s.roots)
	return roots
}

func (s *RootSet) Len() int {
	if s == nil {
		return 0
	}
	s.mut.Lock()
	defer s.mut.Unlock()
	return len(s.roots)
}

// Stop ends all event loops and releases the watches. It is safe to call
// more than once.
func (s *RootSet) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		s.cancel()
		if err := <-s.done; err != nil && !errors.Is(err, context.Canceled) {
			l.Debugln("supervisor:", err)
		}
		s.closeRoots()
	})
}

func (s *RootSet) closeRoots() {
	s.mut.Lock()
	if s.stopped {
		s.mut.Unlock()
		return
	}
	s.stopped = true
	roots := s.roots
	s.mut.Unlock()

	for _, r := range roots {
		r.stop()
	}
	metricActiveRoots.Sub(float64(len(roots)))
}
