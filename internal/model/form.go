// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"time"
)

// EventForm is the editable subset of an Event submitted by the create and
// edit forms. ID and participants are never taken from the form.
type EventForm struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	LongDescription string   `json:"long_description"`
	CollegeID       string   `json:"college_id"`
	CategoryID      string   `json:"category_id"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Location        string   `json:"location"`
	ImageURL        string   `json:"image_url"`
	Rules           []string `json:"rules"`
	Prize           string   `json:"prize"`
}

// FormDefaults supplies the fallback college and category for a new event.
type FormDefaults struct {
	CollegeID  string
	CategoryID string
}

// NewEventID returns a time-based event identifier ("e" + unix millis).
func NewEventID(now time.Time) string {
	return fmt.Sprintf("e%d", now.UnixMilli())
}

// Validate returns field errors for required fields. An empty map means valid.
func (f EventForm) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(f.Date) == "" {
		errs["date"] = "Date is required"
	} else if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
		errs["date"] = "Date must be in YYYY-MM-DD format"
	}
	if strings.TrimSpace(f.Time) == "" {
		errs["time"] = "Time is required"
	}
	if strings.TrimSpace(f.Location) == "" {
		errs["location"] = "Location is required"
	}
	return errs
}

// NewEvent builds a fresh event from the form. Blank rules are dropped and
// missing college or category ids fall back to the defaults.
func (f EventForm) NewEvent(id string, defaults FormDefaults) Event {
	e := Event{ID: id, Participants: []Participant{}}
	f.apply(&e)
	if e.CollegeID == "" {
		e.CollegeID = defaults.CollegeID
	}
	if e.CategoryID == "" {
		e.CategoryID = defaults.CategoryID
	}
	return e
}

// ApplyTo overlays the form onto an existing event, keeping its id and
// participants.
func (f EventForm) ApplyTo(existing Event) Event {
	e := existing.Clone()
	collegeID, categoryID := e.CollegeID, e.CategoryID
	f.apply(&e)
	if e.CollegeID == "" {
		e.CollegeID = collegeID
	}
	if e.CategoryID == "" {
		e.CategoryID = categoryID
	}
	return e
}

func (f EventForm) apply(e *Event) {
	e.Name = f.Name
	e.Description = f.Description
	e.LongDescription = f.LongDescription
	e.CollegeID = f.CollegeID
	e.CategoryID = f.CategoryID
	e.Date = f.Date
	e.Time = f.Time
	e.Location = f.Location
	e.ImageURL = f.ImageURL
	e.Prize = f.Prize
	e.Rules = CleanRules(f.Rules)
}

// CleanRules drops rules that are empty after trimming whitespace.
func CleanRules(rules []string) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
