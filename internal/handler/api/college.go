// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-events/internal/discovery"
	"github.com/olegiv/campus-events/internal/model"
)

// maxIDAttempts bounds how far createEvent bumps a colliding id.
const maxIDAttempts = 1000

// createEvent validates form, adds the resulting event and writes the
// response. Ids are time based; one minted in a millisecond already taken
// is bumped forward until the catalog accepts it.
func (h *Handler) createEvent(w http.ResponseWriter, form model.EventForm, defaults model.FormDefaults) {
	if errs := form.Validate(); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	now := h.now()
	event := form.NewEvent(model.NewEventID(now), defaults)
	if errs := h.catalog.CheckReferences(event); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	for attempt := 1; !h.catalog.AddEvent(event); attempt++ {
		if attempt == maxIDAttempts {
			h.logger.Error("no free event id", "category", "catalog", "attempts", attempt)
			WriteInternalError(w, "Failed to create event")
			return
		}
		now = now.Add(time.Millisecond)
		event.ID = model.NewEventID(now)
	}
	h.logger.Info("event created", "category", "catalog", "event_id", event.ID, "college_id", event.CollegeID)
	WriteCreated(w, event)
}

// updateEvent overlays form onto existing and stores the result.
func (h *Handler) updateEvent(w http.ResponseWriter, existing model.Event, form model.EventForm) {
	if errs := form.Validate(); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	event := form.ApplyTo(existing)
	if errs := h.catalog.CheckReferences(event); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	h.catalog.UpdateEvent(event)
	h.logger.Info("event updated", "category", "catalog", "event_id", event.ID)
	WriteSuccess(w, event, nil)
}

// collegeEvent resolves {collegeID} and {id}, writing 404 when either is
// unknown or the event belongs to another college.
func (h *Handler) collegeEvent(w http.ResponseWriter, r *http.Request) (model.Event, bool) {
	collegeID := chi.URLParam(r, "collegeID")
	event, ok := h.catalog.Event(chi.URLParam(r, "id"))
	if !ok || event.CollegeID != collegeID {
		WriteNotFound(w, "Event not found")
		return model.Event{}, false
	}
	return event, true
}

// ListCollegeEvents handles GET /api/v1/colleges/{collegeID}/events.
func (h *Handler) ListCollegeEvents(w http.ResponseWriter, r *http.Request) {
	collegeID := chi.URLParam(r, "collegeID")
	if _, ok := h.catalog.College(collegeID); !ok {
		WriteNotFound(w, "College not found")
		return
	}

	listing := discovery.CollegeEvents(h.catalog.Snapshot(), collegeID)
	WriteSuccess(w, listing, &Meta{Total: len(listing.Events)})
}

// CreateCollegeEvent handles POST /api/v1/colleges/{collegeID}/events.
// The event always belongs to the college in the path.
func (h *Handler) CreateCollegeEvent(w http.ResponseWriter, r *http.Request) {
	collegeID := chi.URLParam(r, "collegeID")
	if _, ok := h.catalog.College(collegeID); !ok {
		WriteNotFound(w, "College not found")
		return
	}

	var form model.EventForm
	if err := decodeJSON(w, r, &form, false); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	form.CollegeID = collegeID

	h.createEvent(w, form, model.FormDefaults{
		CollegeID:  collegeID,
		CategoryID: h.firstCategoryID(),
	})
}

// UpdateCollegeEvent handles PUT /api/v1/colleges/{collegeID}/events/{id}.
func (h *Handler) UpdateCollegeEvent(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.collegeEvent(w, r)
	if !ok {
		return
	}

	var form model.EventForm
	if err := decodeJSON(w, r, &form, false); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	form.CollegeID = existing.CollegeID

	h.updateEvent(w, existing, form)
}

// DeleteCollegeEvent handles DELETE /api/v1/colleges/{collegeID}/events/{id}.
func (h *Handler) DeleteCollegeEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.collegeEvent(w, r)
	if !ok {
		return
	}

	h.catalog.DeleteEvent(event.ID)
	h.logger.Info("event deleted", "category", "catalog", "event_id", event.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) firstCategoryID() string {
	if cats := h.catalog.Categories(); len(cats) > 0 {
		return cats[0].ID
	}
	return ""
}

func (h *Handler) firstCollegeID() string {
	if colleges := h.catalog.Colleges(); len(colleges) > 0 {
		return colleges[0].ID
	}
	return ""
}
