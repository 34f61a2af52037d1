// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/syncthing/treewatch/lib/config"
)

// handler receives the events of one recursive watch. Paths are native and
// absolute, below the watched directory. Calls come from a single goroutine
// and must not block.
type handler interface {
	created(native string)
	changed(native string)
	deleted(native string)
	// renamed is called with the new name of a move within the tree only.
	// Moves into the tree are creates and moves out of it deletes.
	renamed(native string)
	failed(err error)
}

// A watcher is one established recursive watch. Serve runs its event loop,
// calling the handler, until ctx is done. It may be called again after it
// returns, for example when the supervisor restarts it after a panic.
type watcher interface {
	Serve(ctx context.Context) error
	Close() error
}

// A Backend establishes recursive watches.
type Backend interface {
	fmt.Stringer
	watch(dir string, bufferSize int, h handler) (watcher, error)
}

func backendFor(name config.Backend) (Backend, error) {
	switch name {
	case config.BackendNotify, "":
		return notifyBackend{}, nil
	case config.BackendFsnotify:
		return fsnotifyBackend{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// An average change record is a few dozen bytes; use that to turn the
// configured buffer size into a number of buffered events.
const bytesPerEvent = 64

func channelSize(bufferSize int) int {
	n := bufferSize / bytesPerEvent
	if n < 16 {
		n = 16
	}
	return n
}

// The OS reports the two halves of a move within the watched tree back to
// back. A source half not followed by its destination within moveWindow was
// moved out of the tree.
const moveWindow = 20 * time.Millisecond

// nextEvent returns the next event on c if one is queued or arrives within
// moveWindow.
func nextEvent[E any](c <-chan E) (E, bool) {
	select {
	case ev, ok := <-c:
		return ev, ok
	default:
	}

	t := time.NewTimer(moveWindow)
	defer t.Stop()
	select {
	case ev, ok := <-c:
		return ev, ok
	case <-t.C:
		var zero E
		return zero, false
	}
}
