// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-events/internal/discovery"
	"github.com/olegiv/campus-events/internal/middleware"
	"github.com/olegiv/campus-events/internal/model"
	"github.com/olegiv/campus-events/internal/recommend"
)

// RecommendationRequest is the body of POST /student/recommendations.
type RecommendationRequest struct {
	Interests string `json:"interests"`
}

// RecommendationResponse reports a session's recommendation state.
type RecommendationResponse struct {
	Status    recommend.Status `json:"status"`
	Loading   bool             `json:"loading"`
	Seq       uint64           `json:"seq"`
	IDs       []string         `json:"recommended_event_ids"`
	Interests string           `json:"interests,omitempty"`
}

func toRecommendationResponse(st recommend.State) RecommendationResponse {
	ids := st.IDs
	if ids == nil {
		ids = []string{}
	}
	return RecommendationResponse{
		Status:    st.Status,
		Loading:   st.Loading(),
		Seq:       st.Seq,
		IDs:       ids,
		Interests: st.Interests,
	}
}

// sessionState loads the caller's recommendation state. Lookup failures
// degrade to "no recommendations" rather than failing the listing.
func (h *Handler) sessionState(r *http.Request) discovery.Recommendations {
	session := middleware.SessionID(r)
	if session == "" || h.recs == nil {
		return nil
	}
	st, err := h.recs.Tracker().State(r.Context(), session)
	if err != nil {
		h.logger.Warn("failed to load recommendation state", "category", "recommend", "error", err)
		return nil
	}
	return st
}

// StudentColleges handles GET /api/v1/student/colleges.
func (h *Handler) StudentColleges(w http.ResponseWriter, _ *http.Request) {
	colleges := h.catalog.ApprovedColleges()
	if colleges == nil {
		colleges = []model.College{}
	}
	WriteSuccess(w, colleges, &Meta{Total: len(colleges)})
}

// StudentEvents handles GET /api/v1/student/events.
func (h *Handler) StudentEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := discovery.Filter{
		Category: q.Get("category"),
		College:  q.Get("college"),
		Query:    q.Get("q"),
	}

	listing := discovery.StudentEvents(h.catalog.Snapshot(), filter, h.sessionState(r))
	WriteSuccess(w, listing, &Meta{Total: len(listing.Events)})
}

// StudentEvent handles GET /api/v1/student/events/{id}.
func (h *Handler) StudentEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := discovery.StudentDetail(h.catalog.Snapshot(), id, h.sessionState(r))
	if errors.Is(err, discovery.ErrNotFound) {
		WriteNotFound(w, "Event not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to build event detail", "event_id", id, "error", err)
		WriteInternalError(w, "Failed to load event")
		return
	}
	WriteSuccess(w, detail, nil)
}

// RequestRecommendations handles POST /api/v1/student/recommendations.
// The request is resolved in the background and answered with 202 unless
// ?wait=true asks to block until it completes.
func (h *Handler) RequestRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	interests := strings.TrimSpace(req.Interests)
	if interests == "" {
		interests = h.defaultInterests
	}

	session := middleware.SessionID(r)
	if session == "" {
		WriteBadRequest(w, "Missing session", nil)
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		// Only the provider timeout bounds this reply, not the server write timeout.
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

		st, err := h.recs.Run(r.Context(), session, interests)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			h.logger.Debug("client left before recommendations resolved", "category", "recommend")
			return
		}
		if err != nil {
			h.logger.Error("failed to run recommendation request", "category", "recommend", "error", err)
			WriteInternalError(w, "Failed to record recommendation request")
			return
		}
		WriteSuccess(w, toRecommendationResponse(st), nil)
		return
	}

	seq, err := h.recs.Start(r.Context(), session, interests)
	if err != nil {
		h.logger.Error("failed to start recommendation request", "category", "recommend", "error", err)
		WriteInternalError(w, "Failed to record recommendation request")
		return
	}
	WriteAccepted(w, RecommendationResponse{
		Status:    recommend.StatusRequesting,
		Loading:   true,
		Seq:       seq,
		IDs:       []string{},
		Interests: interests,
	})
}

// GetRecommendations handles GET /api/v1/student/recommendations.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	st, err := h.recs.Tracker().State(r.Context(), middleware.SessionID(r))
	if err != nil {
		h.logger.Error("failed to load recommendation state", "category", "recommend", "error", err)
		WriteInternalError(w, "Failed to load recommendations")
		return
	}
	WriteSuccess(w, toRecommendationResponse(st), nil)
}
