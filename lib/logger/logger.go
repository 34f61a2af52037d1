// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package logger implements a facility based logger. Each package of the
// watcher registers a facility; debug output is enabled per facility from
// the TWTRACE environment variable or at runtime with SetTrace.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	NumLevels
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

const (
	DefaultFlags = log.Ltime | log.Ldate
	DebugFlags   = log.Ltime | log.Ldate | log.Lmicroseconds | log.Lshortfile
)

// TraceEnv names the environment variable holding the facilities to debug,
// separated by commas, semicolons or spaces. The value "all" enables every
// facility, including those registered later.
const TraceEnv = "TWTRACE"

// A MessageHandler is called with the level, the facility ("" for the root
// logger) and the message text of every line at or above the level it was
// registered for.
type MessageHandler func(level LogLevel, facility, msg string)

type Logger interface {
	AddHandler(level LogLevel, h MessageHandler)
	SetFlags(flag int)
	Debugln(vals ...interface{})
	Debugf(format string, vals ...interface{})
	Infoln(vals ...interface{})
	Infof(format string, vals ...interface{})
	Warnln(vals ...interface{})
	Warnf(format string, vals ...interface{})
	ShouldDebug(facility string) bool
	SetDebug(facility string, enabled bool)
	SetTrace(spec string)
	Facilities() map[string]string
	NewFacility(facility, description string) Logger
}

type logger struct {
	out        *log.Logger
	handlers   [NumLevels][]MessageHandler
	facilities map[string]string   // facility name => description
	debug      map[string]struct{} // facilities with debugging enabled
	traceAll   bool
	traces     []string // sorted
	mut        sync.Mutex
}

// DefaultLogger writes to standard error, leaving standard output to
// whatever the host prints.
var DefaultLogger = New()

func New() Logger {
	if os.Getenv("LOGGER_DISCARD") != "" {
		return NewWithWriter(io.Discard)
	}
	return NewWithWriter(controlStripper{os.Stderr})
}

// NewWithWriter returns a logger writing to w, with the trace list taken
// from the environment.
func NewWithWriter(w io.Writer) Logger {
	return newLogger(w, os.Getenv(TraceEnv))
}

func newLogger(w io.Writer, trace string) *logger {
	l := &logger{
		out:        log.New(w, "", DefaultFlags),
		facilities: make(map[string]string),
		debug:      make(map[string]struct{}),
	}
	l.SetTrace(trace)
	return l
}

func (l *logger) AddHandler(level LogLevel, h MessageHandler) {
	l.mut.Lock()
	l.handlers[level] = append(l.handlers[level], h)
	l.mut.Unlock()
}

func (l *logger) SetFlags(flag int) {
	l.out.SetFlags(flag)
}

func (l *logger) output(calldepth int, level LogLevel, facility, s string) {
	s = strings.TrimSpace(s)
	line := level.String() + ": "
	if level == LevelDebug && facility != "" {
		line += facility + ": "
	}

	l.mut.Lock()
	defer l.mut.Unlock()
	_ = l.out.Output(calldepth+1, line+s)
	for ll := LevelDebug; ll <= level; ll++ {
		for _, h := range l.handlers[ll] {
			h(level, facility, s)
		}
	}
}

func (l *logger) Debugln(vals ...interface{}) {
	l.output(2, LevelDebug, "", fmt.Sprintln(vals...))
}

func (l *logger) Debugf(format string, vals ...interface{}) {
	l.output(2, LevelDebug, "", fmt.Sprintf(format, vals...))
}

func (l *logger) Infoln(vals ...interface{}) {
	l.output(2, LevelInfo, "", fmt.Sprintln(vals...))
}

func (l *logger) Infof(format string, vals ...interface{}) {
	l.output(2, LevelInfo, "", fmt.Sprintf(format, vals...))
}

func (l *logger) Warnln(vals ...interface{}) {
	l.output(2, LevelWarn, "", fmt.Sprintln(vals...))
}

func (l *logger) Warnf(format string, vals ...interface{}) {
	l.output(2, LevelWarn, "", fmt.Sprintf(format, vals...))
}

// ShouldDebug returns true if the given facility has debugging enabled.
func (l *logger) ShouldDebug(facility string) bool {
	l.mut.Lock()
	_, res := l.debug[facility]
	l.mut.Unlock()
	return res
}

// SetDebug enables or disables debugging for the given facility name.
func (l *logger) SetDebug(facility string, enabled bool) {
	l.mut.Lock()
	l.setDebugLocked(facility, enabled)
	l.mut.Unlock()
}

func (l *logger) setDebugLocked(facility string, enabled bool) {
	if _, ok := l.debug[facility]; enabled && !ok {
		l.debug[facility] = struct{}{}
	} else if !enabled && ok {
		delete(l.debug, facility)
	}
	if len(l.debug) > 0 {
		l.out.SetFlags(DebugFlags)
	} else {
		l.out.SetFlags(DefaultFlags)
	}
}

// SetTrace replaces the trace list and reapplies it to every known
// facility. The syntax is the same as for TWTRACE.
func (l *logger) SetTrace(spec string) {
	traces := strings.FieldsFunc(spec, func(r rune) bool {
		return strings.ContainsRune(",; ", r)
	})
	slices.Sort(traces)

	l.mut.Lock()
	defer l.mut.Unlock()
	l.traceAll = slices.Contains(traces, "all")
	l.traces = slices.Compact(traces)
	for facility := range l.facilities {
		l.setDebugLocked(facility, l.isTracedLocked(facility))
	}
}

func (l *logger) isTracedLocked(facility string) bool {
	if l.traceAll {
		return true
	}
	_, found := slices.BinarySearch(l.traces, facility)
	return found
}

// Facilities returns the registered facilities and their descriptions.
func (l *logger) Facilities() map[string]string {
	l.mut.Lock()
	defer l.mut.Unlock()
	res := make(map[string]string, len(l.facilities))
	for facility, descr := range l.facilities {
		res[facility] = descr
	}
	return res
}

// NewFacility returns a new logger bound to the named facility.
func (l *logger) NewFacility(facility, description string) Logger {
	l.mut.Lock()
	l.facilities[facility] = description
	l.setDebugLocked(facility, l.isTracedLocked(facility))
	l.mut.Unlock()

	return &facilityLogger{
		logger:   l,
		facility: facility,
	}
}

// A facilityLogger is bound to a facility name. Its debug methods are
// no-ops unless debugging is enabled for that facility on the parent.
type facilityLogger struct {
	*logger
	facility string
}

func (l *facilityLogger) Debugln(vals ...interface{}) {
	if !l.ShouldDebug(l.facility) {
		return
	}
	l.output(2, LevelDebug, l.facility, fmt.Sprintln(vals...))
}

func (l *facilityLogger) Debugf(format string, vals ...interface{}) {
	if !l.ShouldDebug(l.facility) {
		return
	}
	l.output(2, LevelDebug, l.facility, fmt.Sprintf(format, vals...))
}

func (l *facilityLogger) Infoln(vals ...interface{}) {
	l.output(2, LevelInfo, l.facility, fmt.Sprintln(vals...))
}

func (l *facilityLogger) Infof(format string, vals ...interface{}) {
	l.output(2, LevelInfo, l.facility, fmt.Sprintf(format, vals...))
}

func (l *facilityLogger) Warnln(vals ...interface{}) {
	l.output(2, LevelWarn, l.facility, fmt.Sprintln(vals...))
}

func (l *facilityLogger) Warnf(format string, vals ...interface{}) {
	l.output(2, LevelWarn, l.facility, fmt.Sprintf(format, vals...))
}

// controlStripper replaces control characters, which may appear in
// watched file names, with spaces.
type controlStripper struct {
	io.Writer
}

func (s controlStripper) Write(data []byte) (int, error) {
	for i, b := range data {
		if b == '\n' || b == '\r' {
			continue
		}
		if b < 32 {
			data[i] = ' '
		}
	}
	return s.Writer.Write(data)
}
