// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build (solaris && !cgo) || (darwin && !cgo) || (android && amd64)
// +build solaris,!cgo darwin,!cgo android,amd64

package watch

import (
	"errors"
)

var errNotifyUnsupported = errors.New("not available because of missing cgo support; use the fsnotify backend")

type notifyBackend struct{}

func (notifyBackend) String() string {
	return "notify"
}

func (notifyBackend) watch(string, int, handler) (watcher, error) {
	return nil, errNotifyUnsupported
}
