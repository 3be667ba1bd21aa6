// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olegiv/campus-events/internal/cache"
)

// Status is the state of a session's recommendation request.
type Status string

// Statuses
const (
	StatusIdle       Status = "idle"
	StatusRequesting Status = "requesting"
	StatusFulfilled  Status = "fulfilled"
	StatusFailed     Status = "failed"
)

// State is the recommendation state of one student session.
type State struct {
	Status    Status    `json:"status"`
	Seq       uint64    `json:"seq"`
	IDs       []string  `json:"ids"`
	Interests string    `json:"interests,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Loading reports whether a request is in flight.
func (s State) Loading() bool {
	return s.Status == StatusRequesting
}

// Has reports whether id is in the last received recommendation set.
func (s State) Has(id string) bool {
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Tracker keeps per-session recommendation state. Every Begin issues a new
// sequence number; Complete only applies the result carrying the latest
// one, so when requests overlap the last request wins and late replies
// from superseded requests are discarded.
type Tracker struct {
	mu     sync.Mutex
	states *cache.TypedCache[State]
	seq    atomic.Uint64
	now    func() time.Time
}

// NewTracker stores session state in c with the given time to live.
func NewTracker(c cache.Cache, ttl time.Duration) *Tracker {
	t := &Tracker{
		states: cache.NewTypedCache[State](c, "recommend:", ttl),
		now:    time.Now,
	}
	// Seeded from the clock so sequences stay increasing across restarts
	// when the state lives in Redis.
	t.seq.Store(uint64(time.Now().UnixNano()))
	return t
}

// State returns the session state, idle if none is stored.
func (t *Tracker) State(ctx context.Context, session string) (State, error) {
	st, ok, err := t.states.Get(ctx, session)
	if err != nil {
		return State{}, fmt.Errorf("loading recommendation state: %w", err)
	}
	if !ok {
		return State{Status: StatusIdle, IDs: []string{}}, nil
	}
	if st.IDs == nil {
		st.IDs = []string{}
	}
	return st, nil
}

// Begin moves the session to requesting, clearing any previous ids, and
// returns the sequence number the eventual Complete must present.
func (t *Tracker) Begin(ctx context.Context, session, interests string) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seq := t.seq.Add(1)
	st := State{
		Status:    StatusRequesting,
		Seq:       seq,
		IDs:       []string{},
		Interests: interests,
		UpdatedAt: t.now(),
	}
	if err := t.states.Set(ctx, session, st); err != nil {
		return 0, fmt.Errorf("storing recommendation state: %w", err)
	}
	return seq, nil
}

// Complete records the outcome of request seq. It reports false when seq
// is stale and the result was discarded. A non-nil failure moves the
// session to failed with an empty set.
func (t *Tracker) Complete(ctx context.Context, session string, seq uint64, ids []string, failure error) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok, err := t.states.Get(ctx, session)
	if err != nil {
		return false, fmt.Errorf("loading recommendation state: %w", err)
	}
	if !ok || cur.Seq != seq {
		return false, nil
	}

	cur.UpdatedAt = t.now()
	if failure != nil {
		cur.Status = StatusFailed
		cur.IDs = []string{}
	} else {
		cur.Status = StatusFulfilled
		cur.IDs = append([]string{}, ids...)
	}
	if err := t.states.Set(ctx, session, cur); err != nil {
		return false, fmt.Errorf("storing recommendation state: %w", err)
	}
	return true, nil
}
