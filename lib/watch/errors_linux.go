// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build linux
// +build linux

package watch

import (
	"errors"
	"syscall"
)

// inotify reports EMFILE when out of instances and ENOSPC when out of
// watches.
func reachedMaxUserWatches(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EMFILE || errno == syscall.ENOSPC
	}
	return false
}
