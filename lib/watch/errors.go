// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package watch

import (
	"errors"
	"fmt"

	"github.com/calmh/incontainer"
)

var (
	// ErrOverflow is reported when the backend had to drop events because
	// its buffer was full.
	ErrOverflow = errors.New("event buffer overflow")

	ErrUnknownBackend = errors.New("unknown backend")
	ErrNotDirectory   = errors.New("not a directory")

	errInotifyLimit = errors.New("failed to set up inotify handler; please increase inotify limits (fs.inotify.max_user_watches)")
)

// A SetupError is returned when a watch root could not be established.
type SetupError struct {
	Root string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("watching %s: %v", e.Root, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Inotify limits are per kernel; a container cannot raise them itself.
var inContainer = incontainer.Detect

func setupError(root string, err error) error {
	if reachedMaxUserWatches(err) {
		if inContainer() {
			err = fmt.Errorf("%w on the container host: %v", errInotifyLimit, err)
		} else {
			err = fmt.Errorf("%w: %v", errInotifyLimit, err)
		}
	}
	return &SetupError{Root: root, Err: err}
}
