// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event is a single college event listed in the catalog.
type Event struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	LongDescription string        `json:"long_description"`
	CollegeID       string        `json:"college_id"`
	CategoryID      string        `json:"category_id"`
	Date            string        `json:"date"` // YYYY-MM-DD
	Time            string        `json:"time"`
	Location        string        `json:"location"`
	ImageURL        string        `json:"image_url"`
	Rules           []string      `json:"rules"`
	Prize           string        `json:"prize"`
	Participants    []Participant `json:"participants"`
}

// Clone returns a deep copy of the event so callers cannot alias catalog slices.
func (e Event) Clone() Event {
	c := e
	if e.Rules != nil {
		c.Rules = append([]string(nil), e.Rules...)
	}
	if e.Participants != nil {
		c.Participants = append([]Participant(nil), e.Participants...)
	}
	return c
}

// Participant is a registered attendee of an event.
type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
