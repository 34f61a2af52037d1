// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build !(solaris && !cgo) && !(darwin && !cgo) && !(android && amd64)
// +build !solaris cgo
// +build !darwin cgo
// +build !android !amd64

package watch

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/syncthing/notify"

	"github.com/syncthing/treewatch/lib/fs"
)

type notifyBackend struct{}

func (notifyBackend) String() string {
	return "notify"
}

func (notifyBackend) watch(dir string, bufferSize int, h handler) (watcher, error) {
	// Notify does not block on sending to the channel, so it must be
	// buffered. Anything beyond the buffer is dropped.
	c := make(chan notify.EventInfo, channelSize(bufferSize))
	if err := notify.Watch(filepath.Join(fs.ToNative(dir), "..."), c, subEventMask); err != nil {
		notify.Stop(c)
		return nil, err
	}
	return &notifyWatcher{c: c, h: h}, nil
}

type notifyWatcher struct {
	c        chan notify.EventInfo
	h        handler
	full     bool
	stopOnce sync.Once
}

func (w *notifyWatcher) Serve(ctx context.Context) error {
	for {
		// A full channel means notify has been dropping events. Report it
		// once per fill.
		if n := len(w.c); n == cap(w.c) {
			if !w.full {
				w.full = true
				w.h.failed(ErrOverflow)
			}
		} else if n < cap(w.c)/2 {
			w.full = false
		}

		select {
		case ev := <-w.c:
			dispatch(ev, w.next, w.h)
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *notifyWatcher) next() (notify.EventInfo, bool) {
	return nextEvent[notify.EventInfo](w.c)
}

func (w *notifyWatcher) Close() error {
	w.stopOnce.Do(func() {
		notify.Stop(w.c)
	})
	return nil
}
