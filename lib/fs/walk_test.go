// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

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

func collect(t *testing.T, root string) map[string]EntryKind {
	t.Helper()
	res := make(map[string]EntryKind)
	err := Walk(root, func(path string, kind EntryKind) error {
		rel, ok := Rel(path, Canonical(root))
		if !ok {
			t.Errorf("walked path %q outside root", path)
			return nil
		}
		res[rel] = kind
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestWalkPlain(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a.txt"))
	createFile(t, filepath.Join(root, "sub", "b.pdf"))
	createFile(t, filepath.Join(root, "sub", "deeper", "c.log"))

	got := collect(t, root)
	want := map[string]EntryKind{
		"a.txt":            KindFile,
		"sub":              KindDir,
		"sub/b.pdf":        KindFile,
		"sub/deeper":       KindDir,
		"sub/deeper/c.log": KindFile,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for name, kind := range want {
		if got[name] != kind {
			t.Errorf("%s: got %v, want %v", name, got[name], kind)
		}
	}
}

func TestWalkFollowsDirectoryLinks(t *testing.T) {
	outside := t.TempDir()
	createFile(t, filepath.Join(outside, "linked.txt"))

	root := t.TempDir()
	createFile(t, filepath.Join(root, "a.txt"))
	symlinkOrSkip(t, outside, filepath.Join(root, "link"))

	got := collect(t, root)
	if got["link"] != KindLinkDir {
		t.Errorf("link reported as %v", got["link"])
	}
	if kind, ok := got["link/linked.txt"]; !ok || kind != KindFile {
		t.Errorf("file below link not reported under link path: %v", got)
	}
}

func TestWalkBreaksCycles(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "sub", "a.txt"))
	symlinkOrSkip(t, root, filepath.Join(root, "sub", "loop"))

	got := collect(t, root)
	if got["sub/loop"] != KindLinkDir {
		t.Errorf("loop link reported as %v", got["sub/loop"])
	}
	var names []string
	for name := range got {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.HasPrefix(name, "sub/loop/") {
			t.Errorf("walk descended into cycle: %v", names)
			break
		}
	}
}

func TestWalkFileLinkIsFile(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "real.txt"))
	symlinkOrSkip(t, filepath.Join(root, "real.txt"), filepath.Join(root, "alias.txt"))
	symlinkOrSkip(t, filepath.Join(root, "missing"), filepath.Join(root, "dangling"))

	got := collect(t, root)
	if got["alias.txt"] != KindFile {
		t.Errorf("file link reported as %v", got["alias.txt"])
	}
	if _, ok := got["dangling"]; ok {
		t.Error("dangling link should be skipped")
	}
}

func TestWalkStopsOnError(t *testing.T) {
	root := t.TempDir()
	createFile(t, filepath.Join(root, "a.txt"))
	createFile(t, filepath.Join(root, "b.txt"))

	errStop := errors.New("stop")
	calls := 0
	err := Walk(root, func(string, EntryKind) error {
		calls++
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("callback called %d times after error", calls)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	err := Walk(filepath.Join(t.TempDir(), "missing"), func(string, EntryKind) error { return nil })
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", err)
	}
}

func TestWalkSkipDir(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	createFile(t, filepath.Join(root, "keep", "a.txt"))
	createFile(t, filepath.Join(root, "skip", "b.txt"))
	createFile(t, filepath.Join(outside, "c.txt"))
	symlinkOrSkip(t, outside, filepath.Join(root, "link"))

	var seen []string
	err := Walk(root, func(path string, kind EntryKind) error {
		rel, _ := Rel(path, Canonical(root))
		seen = append(seen, rel)
		if rel == "skip" || kind == KindLinkDir {
			return SkipDir
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(seen)
	want := []string{"keep", "keep/a.txt", "link", "skip"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", seen, want)
	}
}
