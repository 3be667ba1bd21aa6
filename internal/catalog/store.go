// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog owns the in-memory collection of events, colleges and
// categories for the running process. Mutation methods are the only way to
// change catalog state; every operation is total and visible to all readers
// as soon as it returns.
package catalog

import (
	"sync"

	"github.com/olegiv/campus-events/internal/model"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

// Change kinds
const (
	EventCreated           ChangeKind = "event.created"
	EventUpdated           ChangeKind = "event.updated"
	EventDeleted           ChangeKind = "event.deleted"
	CollegeApprovalToggled ChangeKind = "college.approval_toggled"
)

// Change describes one effective catalog mutation.
type Change struct {
	Kind    ChangeKind
	Event   *model.Event
	College *model.College
}

// Observer is called after every effective mutation, outside the store lock.
type Observer func(Change)

// Store is the arena-backed catalog. Events and colleges live in slices in
// insertion order; the index maps an id to its slot.
type Store struct {
	mu         sync.RWMutex
	events     []model.Event
	eventIdx   map[string]int
	colleges   []model.College
	collegeIdx map[string]int
	categories []model.Category
	observers  []Observer
}

// Data is the initial content of a Store.
type Data struct {
	Events     []model.Event
	Colleges   []model.College
	Categories []model.Category
}

// New creates a store holding copies of the given data.
// Later duplicates of an event or college id are ignored.
func New(data Data) *Store {
	s := &Store{
		eventIdx:   make(map[string]int, len(data.Events)),
		collegeIdx: make(map[string]int, len(data.Colleges)),
		categories: append([]model.Category(nil), data.Categories...),
	}
	for _, c := range data.Colleges {
		if _, ok := s.collegeIdx[c.ID]; ok {
			continue
		}
		s.collegeIdx[c.ID] = len(s.colleges)
		s.colleges = append(s.colleges, c)
	}
	for _, e := range data.Events {
		if _, ok := s.eventIdx[e.ID]; ok {
			continue
		}
		s.eventIdx[e.ID] = len(s.events)
		s.events = append(s.events, e.Clone())
	}
	return s
}

// Subscribe registers an observer for catalog changes.
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// AddEvent appends a fully formed event and reports whether it was stored.
// An event whose id is already present replaces nothing and yields false.
// Foreign keys are not validated.
func (s *Store) AddEvent(e model.Event) bool {
	s.mu.Lock()
	if _, exists := s.eventIdx[e.ID]; exists {
		s.mu.Unlock()
		return false
	}
	stored := e.Clone()
	s.eventIdx[e.ID] = len(s.events)
	s.events = append(s.events, stored)
	observers := s.observers
	s.mu.Unlock()

	notify(observers, Change{Kind: EventCreated, Event: ptr(stored.Clone())})
	return true
}

// UpdateEvent replaces the event with the same id. No-op if absent.
func (s *Store) UpdateEvent(e model.Event) {
	s.mu.Lock()
	slot, ok := s.eventIdx[e.ID]
	if !ok {
		s.mu.Unlock()
		return
	}
	stored := e.Clone()
	s.events[slot] = stored
	observers := s.observers
	s.mu.Unlock()

	notify(observers, Change{Kind: EventUpdated, Event: ptr(stored.Clone())})
}

// DeleteEvent removes the event with the given id. No-op if absent.
func (s *Store) DeleteEvent(id string) {
	s.mu.Lock()
	slot, ok := s.eventIdx[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	removed := s.events[slot]
	s.events = append(s.events[:slot], s.events[slot+1:]...)
	delete(s.eventIdx, id)
	for i := slot; i < len(s.events); i++ {
		s.eventIdx[s.events[i].ID] = i
	}
	observers := s.observers
	s.mu.Unlock()

	notify(observers, Change{Kind: EventDeleted, Event: &removed})
}

// ToggleCollegeApproval flips the approval flag of a college. No-op if absent.
func (s *Store) ToggleCollegeApproval(id string) {
	s.mu.Lock()
	slot, ok := s.collegeIdx[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.colleges[slot].Approved = !s.colleges[slot].Approved
	college := s.colleges[slot]
	observers := s.observers
	s.mu.Unlock()

	notify(observers, Change{Kind: CollegeApprovalToggled, College: &college})
}

// Events returns a copy of all events in insertion order.
func (s *Store) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEvents(s.events)
}

// Event returns the event with the given id.
func (s *Store) Event(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.eventIdx[id]
	if !ok {
		return model.Event{}, false
	}
	return s.events[slot].Clone(), true
}

// EventsByCollege returns the events owned by a college regardless of its
// approval state.
func (s *Store) EventsByCollege(collegeID string) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Event
	for _, e := range s.events {
		if e.CollegeID == collegeID {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Len returns the number of events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Colleges returns a copy of all colleges.
func (s *Store) Colleges() []model.College {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.College(nil), s.colleges...)
}

// College returns the college with the given id.
func (s *Store) College(id string) (model.College, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.collegeIdx[id]
	if !ok {
		return model.College{}, false
	}
	return s.colleges[slot], true
}

// ApprovedColleges returns the colleges whose events students can see.
func (s *Store) ApprovedColleges() []model.College {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.College
	for _, c := range s.colleges {
		if c.Approved {
			out = append(out, c)
		}
	}
	return out
}

// Categories returns the category reference data.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// Category returns the category with the given id.
func (s *Store) Category(id string) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// Snapshot returns a consistent copy of the whole catalog.
func (s *Store) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Data{
		Events:     cloneEvents(s.events),
		Colleges:   append([]model.College(nil), s.colleges...),
		Categories: append([]model.Category(nil), s.categories...),
	}
}

// CheckReferences reports which foreign keys of e do not resolve.
// The returned map is keyed by field name and is empty when all resolve.
func (s *Store) CheckReferences(e model.Event) map[string]string {
	errs := make(map[string]string)
	if _, ok := s.College(e.CollegeID); !ok {
		errs["college_id"] = "Unknown college"
	}
	if _, ok := s.Category(e.CategoryID); !ok {
		errs["category_id"] = "Unknown category"
	}
	return errs
}

func cloneEvents(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}

func notify(observers []Observer, c Change) {
	for _, o := range observers {
		o(c)
	}
}

func ptr[T any](v T) *T { return &v }
