// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fs holds the path codec shared by every component and the tree
// enumeration used by the initial discovery scan.
//
// Every path handed across the library boundary is in canonical form:
// absolute, cleaned and separated by forward slashes. Paths are converted
// once, as early as possible, and never re-derived ad hoc.
package fs

import (
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Canonical returns the canonical form of name. Relative names are made
// absolute against the working directory. An empty name stays empty.
func Canonical(name string) string {
	if name == "" {
		return ""
	}
	name = trimLongPrefix(name)
	abs, err := filepath.Abs(name)
	if err != nil {
		l.Debugln("canonical:", name, err)
		abs = filepath.Clean(name)
	}
	return filepath.ToSlash(abs)
}

// FromNative converts a path already known to be absolute, such as one
// delivered by the OS notification layer, to canonical form without touching
// the working directory.
func FromNative(name string) string {
	return filepath.ToSlash(filepath.Clean(trimLongPrefix(name)))
}

// ToNative converts a canonical path to the platform's separator, for use
// with OS APIs.
func ToNative(name string) string {
	return filepath.FromSlash(name)
}

// Join joins canonical path elements.
func Join(elem ...string) string {
	return filepath.ToSlash(filepath.Join(elem...))
}

// HasPrefix reports whether name equals root or lies below it. Both must be
// canonical. The comparison folds case where the platform does.
func HasPrefix(name, root string) bool {
	name, root = CacheKey(name), CacheKey(root)
	if name == root {
		return true
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return strings.HasPrefix(name, root)
}

// Rebase replaces the leading from component of name with to. It returns
// name unchanged if it is not below from.
func Rebase(name, from, to string) string {
	if from == to {
		return name
	}
	rest, ok := cutRoot(name, from)
	if !ok {
		return name
	}
	if rest == "" {
		return to
	}
	return strings.TrimSuffix(to, "/") + "/" + rest
}

// Rel returns name relative to root, or false if name is not below root.
// The root itself is ".".
func Rel(name, root string) (string, bool) {
	rest, ok := cutRoot(name, root)
	if !ok {
		return "", false
	}
	if rest == "" {
		return ".", true
	}
	return rest, true
}

func cutRoot(name, root string) (string, bool) {
	if len(name) < len(root) || !HasPrefix(name, root) {
		return "", false
	}
	return strings.TrimPrefix(name[len(root):], "/"), true
}

var caseInsensitive = runtime.GOOS == "windows" || runtime.GOOS == "darwin" || runtime.GOOS == "ios"

// CacheKey returns the form of a canonical path used as a map key. On
// platforms with case insensitive filesystems the key is lower cased, and it
// is always in Unicode normalization form C, so that the different spellings
// the OS and the host may use for one file map to the same entry.
func CacheKey(name string) string {
	name = norm.NFC.String(name)
	if caseInsensitive {
		name = foldCase(name)
	}
	return name
}

// foldCase maps every rune to lower(upper(r)), which folds the characters
// that have several lower case forms onto one.
func foldCase(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		return unicode.ToLower(unicode.ToUpper(r))
	}, s)
}
