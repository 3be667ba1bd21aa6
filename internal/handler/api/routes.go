// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Route paths
const (
	RouteCategories      = "/categories"
	RouteStudent         = "/student"
	RouteColleges        = "/colleges/{collegeID}"
	RouteAdmin           = "/admin"
	RouteEvents          = "/events"
	RouteEventID         = "/events/{id}"
	RouteRecommendations = "/recommendations"
)

// crudHandlers groups the handlers of one event collection.
type crudHandlers struct {
	List, Create, Update, Delete http.HandlerFunc
}

func registerEventCRUD(r chi.Router, h crudHandlers) {
	r.Get(RouteEvents, h.List)
	r.Post(RouteEvents, h.Create)
	r.Put(RouteEventID, h.Update)
	r.Delete(RouteEventID, h.Delete)
}

// RouteOptions carries the middleware the caller owns.
type RouteOptions struct {
	// RecommendLimiter guards the recommendation trigger. Optional.
	RecommendLimiter func(http.Handler) http.Handler
	// Timeout bounds every route except the recommendation trigger, whose
	// provider call is bounded only by the provider's own timeout. Optional.
	Timeout func(http.Handler) http.Handler
}

func use(r chi.Router, mw ...func(http.Handler) http.Handler) chi.Router {
	for _, m := range mw {
		if m != nil {
			r = r.With(m)
		}
	}
	return r
}

// Routes mounts the API on r.
func (h *Handler) Routes(r chi.Router, opts RouteOptions) {
	bounded := func(r chi.Router) {
		if opts.Timeout != nil {
			r.Use(opts.Timeout)
		}
	}

	r.Route(RouteStudent, func(r chi.Router) {
		use(r, opts.RecommendLimiter).Post(RouteRecommendations, h.RequestRecommendations)

		r.Group(func(r chi.Router) {
			bounded(r)
			r.Get("/colleges", h.StudentColleges)
			r.Get(RouteEvents, h.StudentEvents)
			r.Get(RouteEventID, h.StudentEvent)
			r.Get(RouteRecommendations, h.GetRecommendations)
		})
	})

	r.Group(func(r chi.Router) {
		bounded(r)
		r.Get(RouteCategories, h.ListCategories)

		r.Route(RouteColleges, func(r chi.Router) {
			registerEventCRUD(r, crudHandlers{
				List:   h.ListCollegeEvents,
				Create: h.CreateCollegeEvent,
				Update: h.UpdateCollegeEvent,
				Delete: h.DeleteCollegeEvent,
			})
		})

		r.Route(RouteAdmin, func(r chi.Router) {
			r.Get("/colleges", h.ListColleges)
			r.Post("/colleges/{id}/toggle-approval", h.ToggleCollegeApproval)
			registerEventCRUD(r, crudHandlers{
				List:   h.ListEvents,
				Create: h.CreateEvent,
				Update: h.UpdateEvent,
				Delete: h.DeleteEvent,
			})
			r.Get("/activity", h.ListActivity)
			r.Get("/jobs", h.ListJobs)
			r.Post("/jobs/{name}/run", h.RunJob)
			r.Put("/jobs/{name}/schedule", h.UpdateJobSchedule)
			r.Delete("/jobs/{name}/schedule", h.ResetJobSchedule)
			r.Get("/webhooks/deliveries", h.ListDeliveries)
			r.Post("/webhooks/test", h.TestWebhooks)
		})
	})
}
