// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package watch

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syncthing/treewatch/lib/fs"
	"github.com/syncthing/treewatch/lib/svcutil"
)

var errWatcherClosed = errors.New("watcher closed")

// fsnotifyBackend emulates a recursive watch with one fsnotify watch per
// directory. Directory links are not followed; they get their own roots.
type fsnotifyBackend struct{}

func (fsnotifyBackend) String() string {
	return "fsnotify"
}

func (fsnotifyBackend) watch(dir string, bufferSize int, h handler) (watcher, error) {
	w, err := fsnotify.NewBufferedWatcher(uint(channelSize(bufferSize)))
	if err != nil {
		return nil, err
	}
	fw := &fsnotifyWatcher{
		w:          w,
		events:     w.Events,
		h:          h,
		bufferSize: bufferSize,
	}
	if err := fw.addTree(dir, false); err != nil {
		w.Close()
		return nil, err
	}
	return fw, nil
}

// Files reported by the walk of a new directory may also be reported by
// the watch placed on it; creates for them are suppressed for this long.
const walkedTTL = time.Second

type fsnotifyWatcher struct {
	w          *fsnotify.Watcher
	events     <-chan fsnotify.Event
	h          handler
	bufferSize int

	walked   map[string]struct{} // native paths reported by addTree
	walkedAt time.Time

	closeOnce sync.Once
}

// addTree watches dir and every real directory below it. With report set,
// files already present are reported as created; they appeared before the
// watch could see them.
func (fw *fsnotifyWatcher) addTree(dir string, report bool) error {
	if err := fw.w.AddWith(fs.ToNative(dir), fsnotify.WithBufferSize(fw.bufferSize)); err != nil {
		return err
	}
	return fs.Walk(dir, func(path string, kind fs.EntryKind) error {
		switch kind {
		case fs.KindDir:
			return fw.w.AddWith(fs.ToNative(path), fsnotify.WithBufferSize(fw.bufferSize))
		case fs.KindLinkDir:
			return fs.SkipDir
		case fs.KindFile:
			if report {
				fw.reportWalked(fs.ToNative(path))
			}
		}
		return nil
	})
}

func (fw *fsnotifyWatcher) reportWalked(native string) {
	if fw.walked == nil || time.Since(fw.walkedAt) > walkedTTL {
		fw.walked = make(map[string]struct{})
	}
	fw.walkedAt = time.Now()
	if _, ok := fw.walked[native]; ok {
		return
	}
	fw.walked[native] = struct{}{}
	fw.h.created(native)
}

// seen reports whether a create for native was already reported by a
// recent walk, and forgets it.
func (fw *fsnotifyWatcher) seen(native string) bool {
	if len(fw.walked) == 0 {
		return false
	}
	if time.Since(fw.walkedAt) > walkedTTL {
		fw.walked = nil
		return false
	}
	_, ok := fw.walked[native]
	delete(fw.walked, native)
	return ok
}

func (fw *fsnotifyWatcher) Serve(ctx context.Context) error {
	for {
		select {
		case ev, ok := <-fw.events:
			if !ok {
				return svcutil.NoRestartErr(errWatcherClosed)
			}
			fw.handle(ev)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return svcutil.NoRestartErr(errWatcherClosed)
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				err = ErrOverflow
			}
			fw.h.failed(err)
		case <-ctx.Done():
			return nil
		}
	}
}

func (fw *fsnotifyWatcher) handle(ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Create):
		fw.added(ev.Name, false)
	case ev.Has(fsnotify.Remove):
		delete(fw.walked, ev.Name)
		fw.h.deleted(ev.Name)
	case ev.Has(fsnotify.Rename):
		// The new name of a move within the tree is the Create right
		// behind the Rename. Without one the file left the tree.
		next, ok := nextEvent[fsnotify.Event](fw.events)
		if ok && next.Has(fsnotify.Create) {
			fw.added(next.Name, true)
			return
		}
		fw.h.deleted(ev.Name)
		if ok {
			fw.handle(next)
		}
	case ev.Has(fsnotify.Write):
		fw.h.changed(ev.Name)
	}
}

// added handles a new name in the tree, watching it if it is a directory.
// The contents of a directory moved within the tree are not new.
func (fw *fsnotifyWatcher) added(native string, renamed bool) {
	switch {
	case renamed:
		fw.h.renamed(native)
	case !fw.seen(native):
		fw.h.created(native)
	}
	if info, err := os.Lstat(native); err == nil && info.IsDir() {
		if err := fw.addTree(fs.FromNative(native), !renamed); err != nil {
			fw.h.failed(err)
		}
	}
}

func (fw *fsnotifyWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		err = fw.w.Close()
	})
	return err
}
