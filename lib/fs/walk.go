// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
)

type EntryKind int

const (
	// KindFile is a regular file, or a link to one.
	KindFile EntryKind = iota
	// KindDir is a real directory.
	KindDir
	// KindLinkDir is a symlink or junction whose target is a directory.
	// Native recursive watches stop at these.
	KindLinkDir
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindLinkDir:
		return "linkdir"
	default:
		return "unknown"
	}
}

// SkipDir can be returned by a WalkFunc for a KindDir or KindLinkDir entry
// to not descend into it.
var SkipDir = iofs.SkipDir

// WalkFunc is called with the canonical path of every entry below the walk
// root. Returning an error other than SkipDir stops the walk and the error
// is returned from Walk.
type WalkFunc func(path string, kind EntryKind) error

// Walk enumerates the tree below root (not including root itself). Links to
// directories are reported as KindLinkDir and then descended into, with the
// entries below them reported under the link path. A link whose target has
// already been visited is reported but not descended into again, which
// breaks cycles. Dangling links are skipped. The first error reading a
// directory aborts the walk.
func Walk(root string, fn WalkFunc) error {
	native := ToNative(Canonical(root))
	w := &walker{
		fn:      fn,
		visited: make(map[string]struct{}),
	}
	if real, err := filepath.EvalSymlinks(native); err == nil {
		w.visited[CacheKey(filepath.ToSlash(real))] = struct{}{}
	}
	return w.walk(native)
}

type walker struct {
	fn      WalkFunc
	visited map[string]struct{}
}

func (w *walker) walk(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		link, err := isReparsePoint(path, entry)
		if err != nil {
			return err
		}

		if !link {
			if entry.IsDir() {
				if err := w.fn(FromNative(path), KindDir); errors.Is(err, SkipDir) {
					continue
				} else if err != nil {
					return err
				}
				if err := w.walk(path); err != nil {
					return err
				}
				continue
			}
			if err := w.fn(FromNative(path), KindFile); err != nil {
				return err
			}
			continue
		}

		target, err := os.Stat(path)
		if err != nil {
			l.Debugln("walk: skipping dangling link", path, err)
			continue
		}
		if !target.IsDir() {
			if err := w.fn(FromNative(path), KindFile); err != nil {
				return err
			}
			continue
		}

		if err := w.fn(FromNative(path), KindLinkDir); errors.Is(err, SkipDir) {
			continue
		} else if err != nil {
			return err
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			l.Debugln("walk: not descending into", path, err)
			continue
		}
		key := CacheKey(filepath.ToSlash(real))
		if _, ok := w.visited[key]; ok {
			l.Debugln("walk: already visited", real, "via", path)
			continue
		}
		w.visited[key] = struct{}{}
		if err := w.walk(path); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the canonical form of root with all links evaluated. It
// returns root itself if evaluation fails.
func Resolve(root string) string {
	real, err := filepath.EvalSymlinks(ToNative(root))
	if err != nil {
		return root
	}
	return Canonical(real)
}
