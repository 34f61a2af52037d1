// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build windows
// +build windows

package fs

import (
	iofs "io/fs"
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// isReparsePoint reports whether the entry carries a reparse point. Junctions
// are reported by the os package as plain directories, so the attributes
// are checked directly.
func isReparsePoint(path string, entry iofs.DirEntry) (bool, error) {
	if entry.Type()&iofs.ModeSymlink != 0 {
		return true, nil
	}
	if !entry.IsDir() && entry.Type()&iofs.ModeIrregular == 0 {
		return false, nil
	}
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return false, nil
	}
	return data.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0, nil
}
