// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package discovery turns catalog snapshots into the role-scoped listings
// shown to students, college administrators and platform administrators.
//
// The student listing is built in a fixed order: events of approved
// colleges first, then either the session's recommended set (for the
// "for-you" filter) or the category and college filters, then the optional
// text query. Every card carries a recommended badge computed from the last
// received recommendation set regardless of the active filter.
package discovery

import (
	"github.com/olegiv/campus-events/internal/catalog"
	"github.com/olegiv/campus-events/internal/model"
)

// Filter values with special meaning.
const (
	FilterAll    = "all"
	FilterForYou = "for-you"
)

// Empty-state messages.
const (
	EmptyTitle         = "No Events Found"
	EmptyForYouMessage = "AI couldn't find a match. Try exploring other categories!"
	EmptyFilterMessage = "Try adjusting your filters to find more events."
	EmptyCollegeTitle  = "No events found"
	EmptyCollegeHint   = `Click "Add New Event" to get started.`
	LoadingMessage     = "Finding events just for you..."
	MissingCollege     = "N/A"
)

// Recommendations is the read side of a session's recommendation state.
type Recommendations interface {
	Loading() bool
	Has(id string) bool
}

// Filter selects student listing contents. Empty Category or College
// means FilterAll.
type Filter struct {
	Category string `json:"category"`
	College  string `json:"college"`
	Query    string `json:"q,omitempty"`
}

func (f Filter) normalized() Filter {
	if f.Category == "" {
		f.Category = FilterAll
	}
	if f.College == "" {
		f.College = FilterAll
	}
	return f
}

// Card is an event as shown in listings.
type Card struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	CollegeID        string `json:"college_id"`
	CollegeName      string `json:"college_name"`
	CategoryID       string `json:"category_id"`
	CategoryName     string `json:"category_name"`
	Date             string `json:"date"`
	DisplayDate      string `json:"display_date"`
	Time             string `json:"time"`
	Location         string `json:"location"`
	ImageURL         string `json:"image_url"`
	Prize            string `json:"prize"`
	ParticipantCount int    `json:"participant_count"`
	Recommended      bool   `json:"recommended"`
}

// EmptyState describes what to show when a listing has no cards.
type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Listing is the student events view.
type Listing struct {
	Filter  Filter      `json:"filter"`
	Loading bool        `json:"loading"`
	Message string      `json:"message,omitempty"`
	Events  []Card      `json:"events"`
	Empty   *EmptyState `json:"empty,omitempty"`
}

// lookup indexes names of a snapshot's colleges and categories.
type lookup struct {
	colleges   map[string]model.College
	categories map[string]string
}

func newLookup(data catalog.Data) lookup {
	l := lookup{
		colleges:   make(map[string]model.College, len(data.Colleges)),
		categories: make(map[string]string, len(data.Categories)),
	}
	for _, c := range data.Colleges {
		l.colleges[c.ID] = c
	}
	for _, c := range data.Categories {
		l.categories[c.ID] = c.Name
	}
	return l
}

func (l lookup) approved(collegeID string) bool {
	c, ok := l.colleges[collegeID]
	return ok && c.Approved
}

func (l lookup) card(e model.Event, rec Recommendations) Card {
	return Card{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		CollegeID:        e.CollegeID,
		CollegeName:      l.colleges[e.CollegeID].Name,
		CategoryID:       e.CategoryID,
		CategoryName:     l.categories[e.CategoryID],
		Date:             e.Date,
		DisplayDate:      FormatCardDate(e.Date),
		Time:             e.Time,
		Location:         e.Location,
		ImageURL:         e.ImageURL,
		Prize:            e.Prize,
		ParticipantCount: len(e.Participants),
		Recommended:      rec != nil && rec.Has(e.ID),
	}
}

// StudentEvents returns the student listing for f. rec may be nil when the
// session has never requested recommendations.
func StudentEvents(data catalog.Data, f Filter, rec Recommendations) Listing {
	f = f.normalized()
	l := newLookup(data)
	out := Listing{Filter: f, Events: []Card{}}

	if f.Category == FilterForYou && rec != nil && rec.Loading() {
		out.Loading = true
		out.Message = LoadingMessage
		return out
	}

	q := newQuery(f.Query)
	for _, e := range data.Events {
		if !l.approved(e.CollegeID) {
			continue
		}
		if f.Category == FilterForYou {
			if rec == nil || !rec.Has(e.ID) {
				continue
			}
		} else {
			if f.Category != FilterAll && e.CategoryID != f.Category {
				continue
			}
			if f.College != FilterAll && e.CollegeID != f.College {
				continue
			}
		}
		if !q.matches(e) {
			continue
		}
		out.Events = append(out.Events, l.card(e, rec))
	}

	if len(out.Events) == 0 {
		msg := EmptyFilterMessage
		if f.Category == FilterForYou {
			msg = EmptyForYouMessage
		}
		out.Empty = &EmptyState{Title: EmptyTitle, Message: msg}
	}
	return out
}

// CollegeListing is the college administrator's view of its own events.
type CollegeListing struct {
	College model.College `json:"college"`
	Events  []Card        `json:"events"`
	Empty   *EmptyState   `json:"empty,omitempty"`
}

// CollegeEvents lists every event of collegeID, whatever its approval.
func CollegeEvents(data catalog.Data, collegeID string) CollegeListing {
	l := newLookup(data)
	out := CollegeListing{College: l.colleges[collegeID], Events: []Card{}}
	for _, e := range data.Events {
		if e.CollegeID == collegeID {
			out.Events = append(out.Events, l.card(e, nil))
		}
	}
	if len(out.Events) == 0 {
		out.Empty = &EmptyState{Title: EmptyCollegeTitle, Message: EmptyCollegeHint}
	}
	return out
}

// AdminRow is one line of the platform administrator's event table.
type AdminRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CollegeID   string `json:"college_id"`
	CollegeName string `json:"college_name"`
	Date        string `json:"date"`
}

// AdminEvents lists all events. Events whose college is unknown are
// labelled MissingCollege.
func AdminEvents(data catalog.Data) []AdminRow {
	l := newLookup(data)
	rows := make([]AdminRow, 0, len(data.Events))
	for _, e := range data.Events {
		name := MissingCollege
		if c, ok := l.colleges[e.CollegeID]; ok && c.Name != "" {
			name = c.Name
		}
		rows = append(rows, AdminRow{
			ID:          e.ID,
			Name:        e.Name,
			CollegeID:   e.CollegeID,
			CollegeName: name,
			Date:        e.Date,
		})
	}
	return rows
}
