// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command libtreewatch is the C ABI of treewatch. Build it with
//
//	go build -buildmode=c-shared -o libtreewatch.so ./cmd/libtreewatch
//
// A host calls Initialize once and passes the returned handle to the other
// entry points. Every non-NULL string returned to the host must be released
// with exactly one call to FreeMemory.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"runtime/cgo"
	"unsafe"

	"github.com/syncthing/treewatch/lib/config"
	"github.com/syncthing/treewatch/lib/logger"
	"github.com/syncthing/treewatch/lib/session"
)

var l = logger.DefaultLogger.NewFacility("main", "C boundary")

func main() {}

// Initialize starts a session on path with the given filter specification
// and returns its handle, or 0 when a session is already active.
//
//export Initialize
func Initialize(path, filters *C.char) C.uintptr_t {
	opts, err := config.FromEnv(config.Default())
	if err != nil {
		l.Warnln("Ignoring environment overrides:", err)
		opts = config.Default()
	}
	s, err := session.New(context.Background(), C.GoString(path), C.GoString(filters), opts)
	if err != nil {
		l.Warnln("Initialize:", err)
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(s))
}

// Event returns the next event without waiting, or NULL.
//
//export Event
func Event(h C.uintptr_t) *C.char {
	s := lookup(h)
	if s == nil {
		return nil
	}
	ev, ok := s.Poll()
	return cString(ev, ok)
}

// EventBlocking waits for the next event. It returns NULL when woken by
// Interrupt or when there was nothing to return; the host calls again.
//
//export EventBlocking
func EventBlocking(h C.uintptr_t) *C.char {
	s := lookup(h)
	if s == nil {
		return nil
	}
	ev, ok := s.BlockingPoll()
	return cString(ev, ok)
}

//export Interrupt
func Interrupt(h C.uintptr_t) {
	if s := lookup(h); s != nil {
		s.Interrupt()
	}
}

// Cleanup ends the session and invalidates the handle.
//
//export Cleanup
func Cleanup(h C.uintptr_t) {
	s := lookup(h)
	if s == nil {
		return
	}
	s.Close()
	cgo.Handle(h).Delete()
}

//export GetFullPath
func GetFullPath(path *C.char) *C.char {
	return C.CString(session.FullPath(C.GoString(path)))
}

//export GetShortPath
func GetShortPath(h C.uintptr_t, path *C.char) *C.char {
	p := C.GoString(path)
	s := lookup(h)
	if s == nil {
		return C.CString(session.FullPath(p))
	}
	return C.CString(s.ShortPath(p))
}

//export FreeMemory
func FreeMemory(p *C.char) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

// lookup returns the session for h, or nil for 0 and for handles already
// released by Cleanup.
func lookup(h C.uintptr_t) (s *session.Session) {
	if h == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			l.Debugln("Invalid handle:", r)
			s = nil
		}
	}()
	s, _ = cgo.Handle(h).Value().(*session.Session)
	return s
}

func cString(s string, ok bool) *C.char {
	if !ok {
		return nil
	}
	return C.CString(s)
}
