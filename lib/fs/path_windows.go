// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build windows
// +build windows

package fs

import "strings"

// trimLongPrefix removes the `\\?\` prefix the OS may report for long paths.
func trimLongPrefix(name string) string {
	if strings.HasPrefix(name, `\\?\UNC\`) {
		return `\` + name[7:]
	}
	return strings.TrimPrefix(name, `\\?\`)
}
