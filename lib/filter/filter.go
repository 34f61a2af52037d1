// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package filter turns a filter specification such as "(zip|rar|7z)" into a
// set of case insensitive extension globs.
package filter

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// tokenExp extracts extension tokens: runs of letters, digits, dots and
// backslashes immediately followed by ')' or '|'.
var tokenExp = regexp.MustCompile(`([\\.a-zA-Z0-9]+)[)|]`)

type pattern struct {
	ext     string
	pattern string
	match   glob.Glob
}

// A Set is an ordered set of "**/*.<ext>" patterns. It is immutable after
// Parse and safe for concurrent use.
type Set struct {
	spec     string
	patterns []pattern
}

// Parse builds a Set from spec. It never fails; a spec without tokens gives
// an empty set.
func Parse(spec string) *Set {
	s := &Set{spec: spec}
	seen := make(map[string]struct{})
	for _, m := range tokenExp.FindAllStringSubmatch(spec, -1) {
		ext := strings.ToLower(strings.ReplaceAll(m[1], `\`, ""))
		ext = strings.TrimLeft(ext, ".")
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}

		p := "**/*." + ext
		g, err := glob.Compile(p, '/')
		if err != nil {
			l.Warnf("Skipping filter token %q: %v", m[1], err)
			continue
		}
		s.patterns = append(s.patterns, pattern{ext: ext, pattern: p, match: g})
	}
	l.Debugf("parsed filter %q into %v", spec, s.Patterns())
	return s
}

// Match reports whether the canonical path matches any pattern in the set.
// An empty set matches nothing. This is the filter used when seeding the
// short name cache from the initial scan.
func (s *Set) Match(path string) bool {
	if s == nil || len(s.patterns) == 0 {
		return false
	}
	lower := strings.ToLower(path)
	for _, p := range s.patterns {
		if p.match.Match(lower) {
			return true
		}
	}
	return false
}

// Accept is the name filter each watch root applies to live events. It is
// configured from the same tokens as Match and agrees with it, except that
// an empty set accepts every path, as a native watcher without filters does.
func (s *Set) Accept(path string) bool {
	if s == nil || len(s.patterns) == 0 {
		return true
	}
	return s.Match(path)
}

// Extensions returns the extensions in the order they appeared in the spec,
// lower cased and without leading dots.
func (s *Set) Extensions() []string {
	if s == nil {
		return nil
	}
	exts := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		exts[i] = p.ext
	}
	return exts
}

// Patterns returns the glob patterns of the set.
func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	pats := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		pats[i] = p.pattern
	}
	return pats
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// String returns the spec the set was parsed from.
func (s *Set) String() string {
	if s == nil {
		return ""
	}
	return s.spec
}
