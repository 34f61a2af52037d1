// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build windows
// +build windows

package shortname

import (
	"golang.org/x/sys/windows"
)

type osQuerier struct{}

func (osQuerier) ShortName(native string) (string, error) {
	long, err := windows.UTF16PtrFromString(native)
	if err != nil {
		return "", err
	}
	buf := make([]uint16, windows.MAX_PATH)
	for {
		n, err := windows.GetShortPathName(long, &buf[0], uint32(len(buf)))
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", ErrUnsupported
		}
		if int(n) <= len(buf) {
			return windows.UTF16ToString(buf[:n]), nil
		}
		// n is the required size including the terminator
		buf = make([]uint16, n)
	}
}
