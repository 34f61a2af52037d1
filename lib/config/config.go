// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config holds the options of a watch session and reads them from
// YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBufferSize = 64 << 10
	MinBufferSize     = 4 << 10
	MaxBufferSize     = 64 << 20
)

type Backend string

const (
	BackendNotify   Backend = "notify"
	BackendFsnotify Backend = "fsnotify"
)

func (b Backend) String() string {
	return string(b)
}

var (
	ErrInvalidBackend    = errors.New("invalid backend")
	ErrInvalidBufferSize = errors.New("invalid buffer size")
)

// Options controls how a session watches its tree.
type Options struct {
	// Backend selects the notification layer.
	Backend Backend `yaml:"backend" default:"notify"`
	// BufferSize is the coalescing buffer per watch root, in bytes.
	BufferSize int `yaml:"bufferSize" default:"65536"`
	// FollowLinks creates an extra watch root for every directory link
	// found below the root.
	FollowLinks bool `yaml:"followLinks" default:"true"`
	// ShortNames enables short name lookups and caching.
	ShortNames bool `yaml:"shortNames" default:"true"`
	// Filters is the filter specification used when none is given
	// explicitly.
	Filters string `yaml:"filters"`
}

func Default() Options {
	var opts Options
	if err := setDefaults(&opts); err != nil {
		panic(err)
	}
	return opts
}

// Load reads YAML options from path on top of the defaults.
func Load(path string) (Options, error) {
	fd, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer fd.Close()

	opts, err := Read(fd)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

func Read(r io.Reader) (Options, error) {
	opts := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("parsing options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (o Options) Validate() error {
	switch o.Backend {
	case BackendNotify, BackendFsnotify:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, o.Backend)
	}
	if o.BufferSize < MinBufferSize || o.BufferSize > MaxBufferSize {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidBufferSize, o.BufferSize, MinBufferSize, MaxBufferSize)
	}
	return nil
}

const (
	EnvBackend    = "TREEWATCH_BACKEND"
	EnvBufferSize = "TREEWATCH_BUFFER_SIZE"
)

// FromEnv applies overrides from the environment to opts.
func FromEnv(opts Options) (Options, error) {
	if v := os.Getenv(EnvBackend); v != "" {
		opts.Backend = Backend(v)
	}
	if v := os.Getenv(EnvBufferSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", EnvBufferSize, ErrInvalidBufferSize)
		}
		opts.BufferSize = n
	}
	return opts, opts.Validate()
}

func setDefaults(data interface{}) error {
	s := reflect.ValueOf(data).Elem()
	t := s.Type()

	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		v, ok := t.Field(i).Tag.Lookup("default")
		if !ok {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(v)
		case reflect.Int:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			f.SetInt(n)
		case reflect.Bool:
			f.SetBool(v == "true")
		default:
			return fmt.Errorf("unsupported default for %s", t.Field(i).Name)
		}
	}
	return nil
}
