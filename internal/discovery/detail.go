// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/campus-events/internal/catalog"
	"github.com/olegiv/campus-events/internal/model"
)

// ParticipantPreview is how many participant avatars the detail view shows.
const ParticipantPreview = 10

// ErrNotFound is returned when an event does not exist or is not visible
// to the caller.
var ErrNotFound = errors.New("event not found")

// descriptionSanitizer allows the markup goldmark produces for ordinary
// prose and strips anything scriptable.
var descriptionSanitizer = bluemonday.UGCPolicy()

// Detail is the full view of a single event.
type Detail struct {
	Card
	LongDescription     string              `json:"long_description"`
	LongDescriptionHTML string              `json:"long_description_html"`
	LongDate            string              `json:"long_date"`
	Rules               []string            `json:"rules"`
	Participants        []model.Participant `json:"participants"`
	ParticipantTotal    int                 `json:"participant_total"`
	MoreParticipants    int                 `json:"more_participants"`
}

// StudentDetail returns the detail view of id. Events of unapproved
// colleges are reported as ErrNotFound.
func StudentDetail(data catalog.Data, id string, rec Recommendations) (Detail, error) {
	l := newLookup(data)
	for _, e := range data.Events {
		if e.ID != id {
			continue
		}
		if !l.approved(e.CollegeID) {
			return Detail{}, ErrNotFound
		}
		return buildDetail(l, e, rec)
	}
	return Detail{}, ErrNotFound
}

func buildDetail(l lookup, e model.Event, rec Recommendations) (Detail, error) {
	html, err := RenderDescription(e.LongDescription)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{
		Card:                l.card(e, rec),
		LongDescription:     e.LongDescription,
		LongDescriptionHTML: html,
		LongDate:            FormatLongDate(e.Date),
		Rules:               append([]string{}, e.Rules...),
		ParticipantTotal:    len(e.Participants),
	}

	preview := e.Participants
	if len(preview) > ParticipantPreview {
		preview = preview[:ParticipantPreview]
		d.MoreParticipants = len(e.Participants) - ParticipantPreview
	}
	d.Participants = append([]model.Participant{}, preview...)
	return d, nil
}

// RenderDescription converts Markdown to sanitized HTML.
func RenderDescription(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering description: %w", err)
	}
	return descriptionSanitizer.Sanitize(buf.String()), nil
}

// FormatCardDate formats a YYYY-MM-DD date as "Jan 2, 2006". Unparseable
// input is returned unchanged.
func FormatCardDate(date string) string {
	return formatDate(date, "Jan 2, 2006")
}

// FormatLongDate formats a YYYY-MM-DD date as "Monday, January 2, 2006".
func FormatLongDate(date string) string {
	return formatDate(date, "Monday, January 2, 2006")
}

func formatDate(date, layout string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format(layout)
}
