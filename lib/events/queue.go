// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package events

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("closed")

// Queue is an unbounded FIFO of events paired with a manual reset wake
// signal. Any number of goroutines may push; pushing never blocks on the
// consumer. Only one consumer is expected to block at a time.
type Queue struct {
	mut    sync.Mutex
	items  []Event
	ready  chan struct{} // closed while the signal is set
	set    bool
	closed bool
}

func NewQueue() *Queue {
	return &Queue{
		ready: make(chan struct{}),
	}
}

// Push appends ev and sets the signal. Events pushed after Close are
// dropped.
func (q *Queue) Push(ev Event) {
	q.mut.Lock()
	if q.closed {
		q.mut.Unlock()
		dl.Debugln("dropping event on closed queue:", ev)
		return
	}
	q.items = append(q.items, ev)
	q.setLocked()
	n := len(q.items)
	q.mut.Unlock()

	dl.Debugln("push", ev)
	metricEventsQueued.WithLabelValues(ev.Kind.String()).Inc()
	metricQueueDepth.Set(float64(n))
}

// TryPop returns the oldest event without waiting. It does not touch the
// signal.
func (q *Queue) TryPop() (Event, bool) {
	q.mut.Lock()
	defer q.mut.Unlock()
	return q.popLocked()
}

// BlockingPop waits for the signal and pops one event. If the queue is
// empty once woken, because of Interrupt or because a previous TryPop
// drained it, the signal is cleared and no event is returned. Callers
// retry.
func (q *Queue) BlockingPop() (Event, bool) {
	ev, ok, _ := q.Wait(context.Background())
	return ev, ok
}

// Wait is BlockingPop that also gives up when ctx is done. The error is
// ctx.Err() in that case, ErrClosed after Close, and nil otherwise.
func (q *Queue) Wait(ctx context.Context) (Event, bool, error) {
	q.mut.Lock()
	ready := q.ready
	q.mut.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return Event{}, false, ctx.Err()
	}

	q.mut.Lock()
	defer q.mut.Unlock()
	if q.closed {
		return Event{}, false, ErrClosed
	}
	if ev, ok := q.popLocked(); ok {
		return ev, true, nil
	}
	q.resetLocked()
	return Event{}, false, nil
}

// Interrupt sets the signal without queueing anything, waking a pending
// BlockingPop with no event.
func (q *Queue) Interrupt() {
	q.mut.Lock()
	q.setLocked()
	q.mut.Unlock()
	dl.Debugln("interrupt")
}

// Close discards queued events and sets the signal permanently. Pops after
// Close return no event.
func (q *Queue) Close() {
	q.mut.Lock()
	defer q.mut.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	q.setLocked()
	metricQueueDepth.Set(0)
}

func (q *Queue) Len() int {
	q.mut.Lock()
	defer q.mut.Unlock()
	return len(q.items)
}

func (q *Queue) popLocked() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	ev := q.items[0]
	q.items[0] = Event{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	metricQueueDepth.Set(float64(len(q.items)))
	return ev, true
}

func (q *Queue) setLocked() {
	if !q.set {
		q.set = true
		close(q.ready)
	}
}

func (q *Queue) resetLocked() {
	if q.set && !q.closed {
		q.set = false
		q.ready = make(chan struct{})
	}
}
