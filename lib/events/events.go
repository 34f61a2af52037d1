// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package events provides the change event record, its wire format and the
// queue that carries events from the watchers to the consumer.
package events

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	Created Kind = iota + 1
	Modified
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "create"
	case Modified:
		return "modify"
	case Deleted:
		return "delete"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(bs []byte) error {
	kind, err := parseKind(string(bs))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "create":
		return Created, nil
	case "modify":
		return Modified, nil
	case "delete":
		return Deleted, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, s)
	}
}

// An Event records that the canonical path changed in the given way.
type Event struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

var ErrInvalidEvent = errors.New("invalid event")

// String returns the wire format "<path>|<kind>".
func (e Event) String() string {
	return e.Path + "|" + e.Kind.String()
}

// ParseEvent parses the wire format produced by Event.String. The path may
// itself contain '|'; the kind is everything after the last one.
func ParseEvent(s string) (Event, error) {
	idx := strings.LastIndexByte(s, '|')
	if idx <= 0 {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidEvent, s)
	}
	kind, err := parseKind(s[idx+1:])
	if err != nil {
		return Event{}, err
	}
	return Event{Path: s[:idx], Kind: kind}, nil
}
