// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-events/internal/model"
)

func testStore() *Store {
	return New(Data{
		Colleges: []model.College{
			{ID: "c1", Name: "Approved College", Approved: true},
			{ID: "c2", Name: "Pending College", Approved: false},
		},
		Categories: []model.Category{{ID: "cat1", Name: "Technology"}},
		Events: []model.Event{
			{ID: "e1", Name: "One", CollegeID: "c1", CategoryID: "cat1", Rules: []string{"r1"}},
			{ID: "e2", Name: "Two", CollegeID: "c2", CategoryID: "cat1"},
		},
	})
}

func TestStore_AddThenUpdate(t *testing.T) {
	s := testStore()
	before := s.Len()

	s.AddEvent(model.Event{ID: "e9", Name: "Draft", CollegeID: "c1"})
	updated := model.Event{ID: "e9", Name: "Final", CollegeID: "c1", CategoryID: "cat1"}
	s.UpdateEvent(updated)

	assert.Equal(t, before+1, s.Len())
	got, ok := s.Event("e9")
	require.True(t, ok)
	assert.Equal(t, updated, got)

	count := 0
	for _, e := range s.Events() {
		if e.ID == "e9" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStore_UpdateMissingIsNoop(t *testing.T) {
	s := testStore()
	before := s.Snapshot()

	s.UpdateEvent(model.Event{ID: "missing", Name: "x"})

	assert.Equal(t, before, s.Snapshot())
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	s := testStore()
	before := s.Snapshot()

	s.DeleteEvent("missing")

	assert.Equal(t, before, s.Snapshot())
}

func TestStore_DeleteKeepsOrderAndIndex(t *testing.T) {
	s := testStore()
	assert.True(t, s.AddEvent(model.Event{ID: "e3", Name: "Three"}))

	s.DeleteEvent("e1")

	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "e3", events[1].ID)

	s.UpdateEvent(model.Event{ID: "e3", Name: "Three v2"})
	got, ok := s.Event("e3")
	require.True(t, ok)
	assert.Equal(t, "Three v2", got.Name)

	_, ok = s.Event("e1")
	assert.False(t, ok)
}

func TestStore_AddDuplicateIDRejected(t *testing.T) {
	s := testStore()

	assert.False(t, s.AddEvent(model.Event{ID: "e1", Name: "Impostor"}))

	assert.Equal(t, 2, s.Len())
	got, _ := s.Event("e1")
	assert.Equal(t, "One", got.Name)
}

func TestStore_ToggleCollegeApproval(t *testing.T) {
	s := testStore()

	s.ToggleCollegeApproval("c1")
	c, _ := s.College("c1")
	assert.False(t, c.Approved)
	assert.Empty(t, s.ApprovedColleges())

	s.ToggleCollegeApproval("c1")
	c, _ = s.College("c1")
	assert.True(t, c.Approved)

	before := s.Snapshot()
	s.ToggleCollegeApproval("nope")
	assert.Equal(t, before, s.Snapshot())
}

func TestStore_ReadsAreCopies(t *testing.T) {
	s := testStore()

	events := s.Events()
	events[0].Rules[0] = "mutated"
	events[0].Name = "mutated"

	got, _ := s.Event("e1")
	assert.Equal(t, "One", got.Name)
	assert.Equal(t, "r1", got.Rules[0])
}

func TestStore_EventsByCollege(t *testing.T) {
	s := testStore()

	assert.Len(t, s.EventsByCollege("c2"), 1)
	assert.Empty(t, s.EventsByCollege("c9"))
}

func TestStore_CheckReferences(t *testing.T) {
	s := testStore()

	assert.Empty(t, s.CheckReferences(model.Event{CollegeID: "c1", CategoryID: "cat1"}))

	errs := s.CheckReferences(model.Event{CollegeID: "c9", CategoryID: "cat9"})
	assert.Contains(t, errs, "college_id")
	assert.Contains(t, errs, "category_id")
}

func TestStore_Observers(t *testing.T) {
	s := testStore()
	var kinds []ChangeKind
	s.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	s.AddEvent(model.Event{ID: "e3"})
	s.UpdateEvent(model.Event{ID: "e3", Name: "x"})
	s.UpdateEvent(model.Event{ID: "missing"})
	s.DeleteEvent("e3")
	s.DeleteEvent("e3")
	s.ToggleCollegeApproval("c2")
	s.ToggleCollegeApproval("missing")

	assert.Equal(t, []ChangeKind{EventCreated, EventUpdated, EventDeleted, CollegeApprovalToggled}, kinds)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := testStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.ToggleCollegeApproval("c1")
			_ = s.Snapshot()
		}()
		go func() {
			defer wg.Done()
			_ = s.ApprovedColleges()
			_ = s.Events()
		}()
	}
	wg.Wait()

	c, _ := s.College("c1")
	assert.True(t, c.Approved, "even number of toggles restores approval")
}

func TestSeed(t *testing.T) {
	data := Seed()
	s := New(data)

	assert.Equal(t, len(data.Events), s.Len())
	for _, e := range s.Events() {
		assert.Empty(t, s.CheckReferences(e), "seed event %s has dangling references", e.ID)
	}

	hasUnapproved := false
	for _, c := range s.Colleges() {
		if !c.Approved {
			hasUnapproved = true
		}
	}
	assert.True(t, hasUnapproved)
}
