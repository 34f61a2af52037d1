// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package shortname resolves long paths to their OS assigned short (8.3)
// names and remembers the mappings it has seen.
package shortname

import (
	"errors"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/syncthing/treewatch/lib/fs"
)

// ErrUnsupported is returned by queriers on platforms or volumes without
// short names.
var ErrUnsupported = errors.New("short names not supported")

// A Querier asks the operating system for the short form of a native path.
type Querier interface {
	ShortName(native string) (string, error)
}

type QuerierFunc func(native string) (string, error)

func (f QuerierFunc) ShortName(native string) (string, error) {
	return f(native)
}

// Cache maps canonical long paths to canonical short paths. Entries are
// added or overwritten, never removed. It is safe for concurrent use.
type Cache struct {
	q Querier
	m *xsync.MapOf[string, string]
}

// New returns a cache using the platform querier.
func New() *Cache {
	return NewWithQuerier(osQuerier{})
}

func NewWithQuerier(q Querier) *Cache {
	return &Cache{
		q: q,
		m: xsync.NewMapOf[string, string](),
	}
}

// Upsert queries the short form of path and stores it. A failed query keeps
// any previous mapping.
func (c *Cache) Upsert(path string) {
	long := fs.Canonical(path)
	if long == "" {
		return
	}
	short, err := c.query(long)
	if err != nil {
		l.Debugf("no short name for %s: %v", long, err)
		return
	}
	if _, loaded := c.m.LoadAndStore(fs.CacheKey(long), short); !loaded {
		metricCacheEntries.Inc()
	}
}

// Resolve returns the short form of path: a live query first, then the
// cached value, and finally the canonical path itself.
func (c *Cache) Resolve(path string) string {
	long := fs.Canonical(path)
	if long == "" {
		return ""
	}
	if short, err := c.query(long); err == nil {
		return short
	}
	if short, ok := c.m.Load(fs.CacheKey(long)); ok {
		return short
	}
	return long
}

// Lookup returns the cached short form of path without asking the OS.
func (c *Cache) Lookup(path string) (string, bool) {
	return c.m.Load(fs.CacheKey(fs.Canonical(path)))
}

func (c *Cache) Len() int {
	return c.m.Size()
}

func (c *Cache) query(long string) (string, error) {
	short, err := c.q.ShortName(fs.ToNative(long))
	if err != nil {
		return "", err
	}
	if short == "" {
		return "", ErrUnsupported
	}
	return fs.Canonical(short), nil
}
