// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestCanonical(t *testing.T) {
	if got := Canonical(""); got != "" {
		t.Errorf("Canonical(\"\") = %q, want empty", got)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	got := Canonical("foo/../bar")
	want := filepath.ToSlash(filepath.Join(wd, "bar"))
	if got != want {
		t.Errorf("Canonical(relative) = %q, want %q", got, want)
	}
	if strings.Contains(got, `\`) {
		t.Errorf("Canonical(relative) = %q contains a backslash", got)
	}

	dir := t.TempDir()
	once := Canonical(dir)
	if twice := Canonical(once); twice != once {
		t.Errorf("Canonical is not idempotent: %q != %q", twice, once)
	}
}

func TestCanonicalWindows(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("windows only")
	}
	cases := []struct {
		in, out string
	}{
		{`C:\data\a.txt`, "C:/data/a.txt"},
		{`\\?\C:\data\a.txt`, "C:/data/a.txt"},
		{`C:\data\sub\..\a.txt`, "C:/data/a.txt"},
	}
	for _, tc := range cases {
		if got := Canonical(tc.in); got != tc.out {
			t.Errorf("Canonical(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestRebase(t *testing.T) {
	cases := []struct {
		name, from, to, want string
	}{
		{"/real/target/a.txt", "/real/target", "/data/link", "/data/link/a.txt"},
		{"/real/target", "/real/target", "/data/link", "/data/link"},
		{"/real/targetx/a.txt", "/real/target", "/data/link", "/real/targetx/a.txt"},
		{"/other/a.txt", "/real/target", "/data/link", "/other/a.txt"},
		{"/data/a.txt", "/data", "/data", "/data/a.txt"},
		{"/a.txt", "/", "/mnt", "/mnt/a.txt"},
	}
	for _, tc := range cases {
		if got := Rebase(tc.name, tc.from, tc.to); got != tc.want {
			t.Errorf("Rebase(%q, %q, %q) = %q, want %q", tc.name, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestRel(t *testing.T) {
	cases := []struct {
		name, root, want string
		ok               bool
	}{
		{"/data/a/b.txt", "/data", "a/b.txt", true},
		{"/data", "/data", ".", true},
		{"/data/", "/data/", ".", true},
		{"/database/x", "/data", "", false},
		{"/other", "/data", "", false},
	}
	for _, tc := range cases {
		got, ok := Rel(tc.name, tc.root)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Rel(%q, %q) = %q, %v, want %q, %v", tc.name, tc.root, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCacheKey(t *testing.T) {
	// "é" composed and decomposed
	composed := "/data/caf\u00e9.txt"
	decomposed := "/data/cafe\u0301.txt"
	if CacheKey(composed) != CacheKey(decomposed) {
		t.Error("normalization forms should share a key")
	}

	upper := CacheKey("/Data/A.TXT")
	lower := CacheKey("/data/a.txt")
	if caseInsensitive && upper != lower {
		t.Errorf("expected case folding, got %q and %q", upper, lower)
	}
	if !caseInsensitive && upper == lower {
		t.Errorf("expected case to be preserved, got %q", upper)
	}
}

func TestFoldCase(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"ABC", "abc"},
		{"abc", "abc"},
		{"ÄÖÜ", "äöü"},
		{"\u212a", "k"}, // Kelvin sign folds onto k
	}
	for _, tc := range cases {
		if got := foldCase(tc.in); got != tc.out {
			t.Errorf("foldCase(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
