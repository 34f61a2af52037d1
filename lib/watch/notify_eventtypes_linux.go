// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build linux && !(android && amd64)
// +build linux
// +build !android !amd64

package watch

import (
	"github.com/syncthing/notify"
	"golang.org/x/sys/unix"
)

const subEventMask = notify.InCreate | notify.InMovedTo | notify.InDelete | notify.InDeleteSelf | notify.InModify | notify.InMovedFrom | notify.InMoveSelf

// inotify reports a move within the tree as InMovedFrom immediately
// followed by InMovedTo carrying the same cookie. An InMovedFrom without its
// partner left the tree and an InMovedTo without one came from outside.
func dispatch(ev notify.EventInfo, next func() (notify.EventInfo, bool), h handler) {
	e := ev.Event()
	switch {
	case e&notify.InCreate != 0:
		h.created(ev.Path())
	case e&notify.InMovedFrom != 0:
		to, ok := next()
		if ok && to.Event()&notify.InMovedTo != 0 && cookie(to) == cookie(ev) {
			h.renamed(to.Path())
			return
		}
		h.deleted(ev.Path())
		if ok {
			dispatch(to, next, h)
		}
	case e&notify.InMovedTo != 0:
		h.created(ev.Path())
	case e&(notify.InDelete|notify.InDeleteSelf) != 0:
		h.deleted(ev.Path())
	case e&notify.InModify != 0:
		h.changed(ev.Path())
	default:
		l.Debugln("dropping", ev)
	}
}

func cookie(ev notify.EventInfo) uint32 {
	if sys, ok := ev.Sys().(*unix.InotifyEvent); ok {
		return sys.Cookie
	}
	return 0
}
