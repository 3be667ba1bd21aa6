// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the anonymous student session.
const SessionCookieName = "campus_session"

// SessionHeader lets non-browser clients supply their session explicitly.
const SessionHeader = "X-Session-ID"

// ContextKeySession is the context key for the session id.
const ContextKeySession ContextKey = "session_id"

// SessionConfig controls the session cookie.
type SessionConfig struct {
	Lifetime time.Duration
	Secure   bool
}

// Session assigns every request an anonymous session id. Recommendation
// state is keyed by it. Ids that are not UUIDs are replaced.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil {
					id = c.Value
				}
			}

			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
				cookie := &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				}
				if cfg.Lifetime > 0 {
					cookie.MaxAge = int(cfg.Lifetime.Seconds())
				}
				http.SetCookie(w, cookie)
			}
			w.Header().Set(SessionHeader, id)

			ctx := context.WithValue(r.Context(), ContextKeySession, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the session id stored by Session, or "".
func SessionID(r *http.Request) string {
	id, _ := r.Context().Value(ContextKeySession).(string)
	return id
}
