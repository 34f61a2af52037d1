// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build !linux && !(solaris && !cgo) && !(darwin && !cgo)
// +build !linux
// +build !solaris cgo
// +build !darwin cgo

package watch

import (
	"os"

	"github.com/syncthing/notify"
)

const subEventMask = notify.Create | notify.Remove | notify.Write | notify.Rename

// The generic Rename is delivered for both the old and the new name. The
// new name is the one that exists. Moves across the tree boundary arrive as
// Create and Remove.
func dispatch(ev notify.EventInfo, _ func() (notify.EventInfo, bool), h handler) {
	e := ev.Event()
	switch {
	case e&notify.Create != 0:
		h.created(ev.Path())
	case e&notify.Remove != 0:
		h.deleted(ev.Path())
	case e&notify.Rename != 0:
		if _, err := os.Lstat(ev.Path()); err == nil {
			h.renamed(ev.Path())
		} else {
			l.Debugln("dropping rename source", ev.Path())
		}
	case e&notify.Write != 0:
		h.changed(ev.Path())
	default:
		l.Debugln("dropping", ev)
	}
}
