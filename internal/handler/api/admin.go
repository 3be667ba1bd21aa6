// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-events/internal/discovery"
	"github.com/olegiv/campus-events/internal/logging"
	"github.com/olegiv/campus-events/internal/model"
	"github.com/olegiv/campus-events/internal/scheduler"
	"github.com/olegiv/campus-events/internal/webhook"
)

// Activity log limits.
const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ListColleges handles GET /api/v1/admin/colleges.
func (h *Handler) ListColleges(w http.ResponseWriter, _ *http.Request) {
	colleges := h.catalog.Colleges()
	if colleges == nil {
		colleges = []model.College{}
	}
	WriteSuccess(w, colleges, &Meta{Total: len(colleges)})
}

// ToggleCollegeApproval handles POST /api/v1/admin/colleges/{id}/toggle-approval.
func (h *Handler) ToggleCollegeApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.catalog.College(id); !ok {
		WriteNotFound(w, "College not found")
		return
	}

	h.catalog.ToggleCollegeApproval(id)
	college, _ := h.catalog.College(id)
	h.logger.Info("college approval toggled", "category", "catalog", "college_id", id, "approved", college.Approved)
	WriteSuccess(w, college, nil)
}

// ListEvents handles GET /api/v1/admin/events.
func (h *Handler) ListEvents(w http.ResponseWriter, _ *http.Request) {
	rows := discovery.AdminEvents(h.catalog.Snapshot())
	WriteSuccess(w, rows, &Meta{Total: len(rows)})
}

// CreateEvent handles POST /api/v1/admin/events. A missing college
// defaults to the first college.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var form model.EventForm
	if err := decodeJSON(w, r, &form, false); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	h.createEvent(w, form, model.FormDefaults{
		CollegeID:  h.firstCollegeID(),
		CategoryID: h.firstCategoryID(),
	})
}

// UpdateEvent handles PUT /api/v1/admin/events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.catalog.Event(chi.URLParam(r, "id"))
	if !ok {
		WriteNotFound(w, "Event not found")
		return
	}

	var form model.EventForm
	if err := decodeJSON(w, r, &form, false); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	h.updateEvent(w, existing, form)
}

// DeleteEvent handles DELETE /api/v1/admin/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.catalog.Event(id); !ok {
		WriteNotFound(w, "Event not found")
		return
	}

	h.catalog.DeleteEvent(id)
	h.logger.Info("event deleted", "category", "catalog", "event_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListActivity handles GET /api/v1/admin/activity.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	if h.activity == nil {
		WriteSuccess(w, []logging.Entry{}, &Meta{Total: 0})
		return
	}

	limit := queryInt(r, "limit", defaultActivityLimit)
	if limit <= 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}
	entries := h.activity.Entries(limit)
	WriteSuccess(w, entries, &Meta{Total: h.activity.Len()})
}

// ListJobs handles GET /api/v1/admin/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	if h.jobs == nil {
		WriteSuccess(w, []scheduler.JobInfo{}, &Meta{Total: 0})
		return
	}
	jobs := h.jobs.List()
	WriteSuccess(w, jobs, &Meta{Total: len(jobs)})
}

// RunJob handles POST /api/v1/admin/jobs/{name}/run.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}

	if err := h.jobs.TriggerNow(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			WriteNotFound(w, "Job not found")
			return
		}
		h.logger.Error("manual job run failed", "category", "system", "job", name, "error", err)
		WriteInternalError(w, "Job failed")
		return
	}
	WriteSuccess(w, map[string]string{"job": name, "status": "completed"}, nil)
}

// ScheduleRequest is the body of PUT /api/v1/admin/jobs/{name}/schedule.
type ScheduleRequest struct {
	Schedule string `json:"schedule"`
}

// UpdateJobSchedule handles PUT /api/v1/admin/jobs/{name}/schedule.
func (h *Handler) UpdateJobSchedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}

	var req ScheduleRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.Schedule) == "" {
		WriteValidationError(w, map[string]string{"schedule": "Schedule is required"})
		return
	}

	if err := h.jobs.UpdateSchedule(name, req.Schedule); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			WriteNotFound(w, "Job not found")
			return
		}
		WriteValidationError(w, map[string]string{"schedule": err.Error()})
		return
	}
	WriteSuccess(w, map[string]string{"job": name, "schedule": req.Schedule}, nil)
}

// ResetJobSchedule handles DELETE /api/v1/admin/jobs/{name}/schedule.
func (h *Handler) ResetJobSchedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}

	if err := h.jobs.ResetSchedule(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			WriteNotFound(w, "Job not found")
			return
		}
		WriteInternalError(w, "Failed to reset schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDeliveries handles GET /api/v1/admin/webhooks/deliveries.
func (h *Handler) ListDeliveries(w http.ResponseWriter, _ *http.Request) {
	if h.webhooks == nil {
		WriteSuccess(w, []webhook.Delivery{}, &Meta{Total: 0})
		return
	}
	deliveries := h.webhooks.Deliveries()
	WriteSuccess(w, deliveries, &Meta{Total: len(deliveries)})
}

// TestWebhooks handles POST /api/v1/admin/webhooks/test.
func (h *Handler) TestWebhooks(w http.ResponseWriter, r *http.Request) {
	if h.webhooks == nil || h.webhooks.Endpoints() == 0 {
		WriteError(w, http.StatusConflict, "webhooks_disabled", "No webhook endpoints configured", nil)
		return
	}

	event := webhook.NewEvent(webhook.EventTest, webhook.TestEventData{
		Message:   "This is a test webhook delivery from campus-events.",
		Timestamp: h.now().UTC(),
	})
	if err := h.webhooks.Dispatch(r.Context(), event); err != nil {
		h.logger.Error("failed to dispatch test webhook", "category", "webhook", "error", err)
		WriteInternalError(w, "Failed to dispatch test webhook")
		return
	}
	WriteAccepted(w, map[string]string{"event_id": event.ID, "type": event.Type})
}
