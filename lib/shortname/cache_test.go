// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package shortname

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/syncthing/treewatch/lib/fs"
)

// fakeQuerier hands out short names from a map that tests can edit to
// simulate files being deleted or short name generation being disabled.
type fakeQuerier struct {
	mut   sync.Mutex
	names map[string]string
	calls int
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{names: make(map[string]string)}
}

func (f *fakeQuerier) set(long, short string) {
	f.mut.Lock()
	f.names[fs.Canonical(long)] = fs.ToNative(fs.Canonical(short))
	f.mut.Unlock()
}

func (f *fakeQuerier) remove(long string) {
	f.mut.Lock()
	delete(f.names, fs.Canonical(long))
	f.mut.Unlock()
}

func (f *fakeQuerier) ShortName(native string) (string, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	f.calls++
	short, ok := f.names[fs.FromNative(native)]
	if !ok {
		return "", ErrUnsupported
	}
	return short, nil
}

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return fs.Canonical(filepath.Join(t.TempDir(), name))
}

func TestUpsertAndLookup(t *testing.T) {
	q := newFakeQuerier()
	c := NewWithQuerier(q)

	long := tempPath(t, "Progress Report.txt")
	short := tempPath(t, "PROGRE~1.TXT")
	q.set(long, short)

	c.Upsert(long)
	got, ok := c.Lookup(long)
	if !ok || got != short {
		t.Fatalf("Lookup = %q, %v; want %q", got, ok, short)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	// Upserting again is idempotent.
	c.Upsert(long)
	if c.Len() != 1 {
		t.Errorf("Len after second upsert = %d, want 1", c.Len())
	}
}

func TestUpsertFailureKeepsEntry(t *testing.T) {
	q := newFakeQuerier()
	c := NewWithQuerier(q)

	long := tempPath(t, "archive file.zip")
	short := tempPath(t, "ARCHIV~1.ZIP")
	q.set(long, short)
	c.Upsert(long)

	q.remove(long)
	c.Upsert(long)

	if got, ok := c.Lookup(long); !ok || got != short {
		t.Errorf("Lookup after failed upsert = %q, %v; want %q", got, ok, short)
	}
}

func TestUpsertUnknownPath(t *testing.T) {
	c := NewWithQuerier(newFakeQuerier())
	c.Upsert(tempPath(t, "nothing.txt"))
	c.Upsert("")
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestResolve(t *testing.T) {
	q := newFakeQuerier()
	c := NewWithQuerier(q)

	long := tempPath(t, "very long document name.pdf")
	short := tempPath(t, "VERYLO~1.PDF")
	other := tempPath(t, "other.pdf")

	// Live query wins.
	q.set(long, short)
	if got := c.Resolve(long); got != short {
		t.Errorf("Resolve live = %q, want %q", got, short)
	}

	// Not cached by Resolve alone, so once the file is gone the long
	// name comes back.
	q.remove(long)
	if got := c.Resolve(long); got != long {
		t.Errorf("Resolve uncached = %q, want %q", got, long)
	}

	// Cached entries survive the file going away.
	q.set(long, short)
	c.Upsert(long)
	q.remove(long)
	if got := c.Resolve(long); got != short {
		t.Errorf("Resolve cached = %q, want %q", got, short)
	}

	if got := c.Resolve(other); got != other {
		t.Errorf("Resolve unknown = %q, want %q", got, other)
	}
	if got := c.Resolve(""); got != "" {
		t.Errorf("Resolve empty = %q", got)
	}
}

func TestResolveNativeSeparators(t *testing.T) {
	q := newFakeQuerier()
	c := NewWithQuerier(q)

	long := tempPath(t, "some long name.txt")
	short := tempPath(t, "SOMELO~1.TXT")
	q.set(long, short)
	c.Upsert(long)
	q.remove(long)

	if got := c.Resolve(fs.ToNative(long)); got != short {
		t.Errorf("Resolve(native) = %q, want %q", got, short)
	}
	if strings.Contains(c.Resolve(fs.ToNative(long)), `\`) {
		t.Error("resolved path contains backslashes")
	}
}

func TestRoundTrip(t *testing.T) {
	q := newFakeQuerier()
	c := NewWithQuerier(q)

	long := tempPath(t, "round trip.txt")
	short := tempPath(t, "ROUNDT~1.TXT")
	q.set(long, short)
	c.Upsert(long)

	full := fs.Canonical(long)
	s1 := c.Resolve(full)
	full2 := fs.Canonical(s1)
	s2 := c.Resolve(full2)
	if s1 != short || full2 != short || s2 != short {
		t.Errorf("round trip not stable: %q -> %q -> %q -> %q", full, s1, full2, s2)
	}
}

func TestConcurrentUpsert(t *testing.T) {
	q := newFakeQuerier()
	c := NewWithQuerier(q)
	dir := fs.Canonical(t.TempDir())

	const n = 50
	for i := 0; i < n; i++ {
		q.set(fs.Join(dir, fmt.Sprintf("long name %d.txt", i)), fs.Join(dir, fmt.Sprintf("LONGNA~%d.TXT", i)))
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				name := fs.Join(dir, fmt.Sprintf("long name %d.txt", i))
				c.Upsert(name)
				c.Resolve(name)
			}
		}()
	}
	wg.Wait()

	if c.Len() != n {
		t.Errorf("Len = %d, want %d", c.Len(), n)
	}
}

func TestQuerierFunc(t *testing.T) {
	long := tempPath(t, "x.txt")
	c := NewWithQuerier(QuerierFunc(func(string) (string, error) {
		return "", nil
	}))
	c.Upsert(long)
	if c.Len() != 0 {
		t.Error("empty short name should not be cached")
	}
	if got := c.Resolve(long); got != long {
		t.Errorf("Resolve = %q, want %q", got, long)
	}
}
