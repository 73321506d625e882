// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package inflight sequences list refreshes per operator and view.
// Starting a refresh supersedes the previous one for the same key: the older
// refresh's context is cancelled and it reports itself stale, so it never
// renders over newer data.
package inflight

import (
	"context"
	"sync"
)

type key struct {
	session string
	view    string
}

// Tracker holds the newest refresh per (session, view).
// The zero value is ready to use.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	current map[key]*Ticket
}

// New creates a Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Ticket identifies one refresh.
type Ticket struct {
	tracker *Tracker
	key     key
	seq     uint64
	cancel  context.CancelFunc
}

// Begin registers a refresh of view for session and returns the context the
// refresh must use for its API calls. Any earlier refresh under the same key
// is cancelled.
func (t *Tracker) Begin(parent context.Context, session, view string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		t.current = make(map[key]*Ticket)
	}
	k := key{session: session, view: view}
	if prev, ok := t.current[k]; ok {
		prev.cancel()
	}
	t.seq++
	tk := &Ticket{tracker: t, key: k, seq: t.seq, cancel: cancel}
	t.current[k] = tk
	return ctx, tk
}

// Seq returns the ticket's sequence number. Later tickets have larger numbers.
func (tk *Ticket) Seq() uint64 {
	return tk.seq
}

// Stale reports whether a newer refresh has started under the same key.
func (tk *Ticket) Stale() bool {
	t := tk.tracker
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.current[tk.key]
	return !ok || cur != tk
}

// Done releases the ticket. It must be called once the refresh finishes.
func (tk *Ticket) Done() {
	t := tk.tracker
	t.mu.Lock()
	if cur, ok := t.current[tk.key]; ok && cur == tk {
		delete(t.current, tk.key)
	}
	t.mu.Unlock()
	tk.cancel()
}

// Len returns the number of refreshes in flight.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.current)
}
