// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/syncthing/treewatch/lib/config"
)

func TestOptionsLayering(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "treewatch.yaml")
	if err := os.WriteFile(cfg, []byte("backend: fsnotify\nbufferSize: 8192\nfilters: \"(zip)\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(config.EnvBufferSize, "16384")

	opts, err := cli{Config: cfg, Filters: "(txt)"}.options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Backend != config.BackendFsnotify {
		t.Errorf("backend from file lost: %v", opts.Backend)
	}
	if opts.BufferSize != 16384 {
		t.Errorf("environment should override file, got %d", opts.BufferSize)
	}
	if opts.Filters != "(txt)" {
		t.Errorf("flag should override file, got %q", opts.Filters)
	}

	opts, err = cli{Config: cfg, Backend: "notify", BufferSize: 4096}.options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Backend != config.BackendNotify || opts.BufferSize != 4096 || opts.Filters != "(zip)" {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestOptionsInvalid(t *testing.T) {
	if _, err := (cli{Backend: "inotify"}).options(); !errors.Is(err, config.ErrInvalidBackend) {
		t.Errorf("expected invalid backend, got %v", err)
	}
	if _, err := (cli{BufferSize: 1}).options(); !errors.Is(err, config.ErrInvalidBufferSize) {
		t.Errorf("expected invalid buffer size, got %v", err)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer

	p := &printer{out: &buf}
	if err := p.print("/data/a.txt|create"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "/data/a.txt|create\n" {
		t.Errorf("plain output %q", buf.String())
	}

	buf.Reset()
	p = &printer{out: &buf, json: true}
	if err := p.print("/data/a.txt|delete"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != `{"path":"/data/a.txt","kind":"delete"}`+"\n" {
		t.Errorf("json output %q", buf.String())
	}

	if err := p.print("garbage"); err == nil {
		t.Error("expected error for malformed event")
	}
}
