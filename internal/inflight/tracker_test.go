// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package inflight

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestTracker_NewerRefreshSupersedesOlder(t *testing.T) {
	tr := New()

	ctxA, a := tr.Begin(context.Background(), "s1", "users")
	ctxB, b := tr.Begin(context.Background(), "s1", "users")

	if !a.Stale() {
		t.Error("older refresh not stale after a newer one began")
	}
	if !errors.Is(ctxA.Err(), context.Canceled) {
		t.Errorf("older context err = %v, want Canceled", ctxA.Err())
	}
	if b.Stale() {
		t.Error("newest refresh reported stale")
	}
	if ctxB.Err() != nil {
		t.Errorf("newest context err = %v", ctxB.Err())
	}
	if b.Seq() <= a.Seq() {
		t.Errorf("Seq() not increasing: %d then %d", a.Seq(), b.Seq())
	}

	// The older ticket finishing must not release the newer one.
	a.Done()
	if b.Stale() {
		t.Error("newest refresh stale after older Done()")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}

	b.Done()
	if tr.Len() != 0 {
		t.Errorf("Len() = %d after all Done, want 0", tr.Len())
	}
	if ctxB.Err() == nil {
		t.Error("context not cancelled after Done()")
	}
}

func TestTracker_StaleAfterNewerFinished(t *testing.T) {
	tr := New()

	_, a := tr.Begin(context.Background(), "s1", "content")
	_, b := tr.Begin(context.Background(), "s1", "content")
	b.Done()

	if !a.Stale() {
		t.Error("older refresh must stay stale after the newer one finished")
	}
	a.Done()
}

func TestTracker_KeysAreIndependent(t *testing.T) {
	var tr Tracker

	ctx1, users := tr.Begin(context.Background(), "s1", "users")
	ctx2, content := tr.Begin(context.Background(), "s1", "content")
	ctx3, other := tr.Begin(context.Background(), "s2", "users")
	defer users.Done()
	defer content.Done()
	defer other.Done()

	for name, tk := range map[string]*Ticket{"users": users, "content": content, "other session": other} {
		if tk.Stale() {
			t.Errorf("%s ticket stale", name)
		}
	}
	for _, ctx := range []context.Context{ctx1, ctx2, ctx3} {
		if ctx.Err() != nil {
			t.Errorf("unrelated context cancelled: %v", ctx.Err())
		}
	}
}

func TestTracker_ParentCancellation(t *testing.T) {
	tr := New()
	parent, cancel := context.WithCancel(context.Background())

	ctx, tk := tr.Begin(parent, "s1", "roles")
	defer tk.Done()
	cancel()

	if ctx.Err() == nil {
		t.Error("refresh context not cancelled with its parent")
	}
}

func TestTracker_Concurrent(t *testing.T) {
	tr := New()

	var wg sync.WaitGroup
	tickets := make(chan *Ticket, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, tk := tr.Begin(context.Background(), "s1", "users")
			tickets <- tk
		}()
	}
	wg.Wait()
	close(tickets)

	fresh := 0
	var all []*Ticket
	for tk := range tickets {
		all = append(all, tk)
		if !tk.Stale() {
			fresh++
		}
	}
	if fresh != 1 {
		t.Errorf("fresh tickets = %d, want exactly 1", fresh)
	}
	for _, tk := range all {
		tk.Done()
	}
	if tr.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tr.Len())
	}
}
