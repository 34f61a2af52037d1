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
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/syncthing/treewatch/lib/events"
	"github.com/syncthing/treewatch/lib/fs"
	"github.com/syncthing/treewatch/lib/shortname"
)

// fakeBackend hands out watchers whose events are injected by the test.
type fakeBackend struct {
	mut      sync.Mutex
	watchers map[string]*fakeWatcher
	fail     map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		watchers: make(map[string]*fakeWatcher),
		fail:     make(map[string]error),
	}
}

func (*fakeBackend) String() string {
	return "fake"
}

func (b *fakeBackend) watch(dir string, _ int, h handler) (watcher, error) {
	b.mut.Lock()
	defer b.mut.Unlock()
	if err := b.fail[dir]; err != nil {
		return nil, err
	}
	w := &fakeWatcher{
		h:  h,
		in: make(chan func(handler), 16),
	}
	b.watchers[dir] = w
	return w, nil
}

func (b *fakeBackend) watcher(t *testing.T, dir string) *fakeWatcher {
	t.Helper()
	b.mut.Lock()
	defer b.mut.Unlock()
	w, ok := b.watchers[dir]
	if !ok {
		t.Fatalf("no watch on %s", dir)
	}
	return w
}

type fakeWatcher struct {
	h  handler
	in chan func(handler)

	mut    sync.Mutex
	closed bool
}

func (w *fakeWatcher) Serve(ctx context.Context) error {
	for {
		select {
		case fn := <-w.in:
			fn(w.h)
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *fakeWatcher) Close() error {
	w.mut.Lock()
	w.closed = true
	w.mut.Unlock()
	return nil
}

func (w *fakeWatcher) isClosed() bool {
	w.mut.Lock()
	defer w.mut.Unlock()
	return w.closed
}

// upperQuerier pretends every existing file has a short name that is its
// upper cased base name.
type upperQuerier struct{}

func (upperQuerier) ShortName(native string) (string, error) {
	if _, err := os.Lstat(native); err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(native), strings.ToUpper(filepath.Base(native))), nil
}

func shortOf(path string) string {
	return fs.Join(filepath.Dir(path), strings.ToUpper(filepath.Base(path)))
}

func newTestCache() *shortname.Cache {
	return shortname.NewWithQuerier(upperQuerier{})
}

func createFile(t *testing.T, name string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func symlinkOrSkip(t *testing.T, target, name string) {
	t.Helper()
	if err := os.Symlink(target, name); err != nil {
		t.Skip("symlinks not supported:", err)
	}
}

func popAll(q *events.Queue) []string {
	var res []string
	for {
		ev, ok := q.TryPop()
		if !ok {
			return res
		}
		res = append(res, ev.String())
	}
}

func waitQueued(t *testing.T, q *events.Queue, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for q.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d events, have %d", n, q.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var errFake = errors.New("fake failure")

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
