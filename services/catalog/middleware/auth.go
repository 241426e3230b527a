// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the catalog service.
//
// # Authentication Flow
//
// Admin authentication is cookie based. A successful login issues an
// opaque session token, stored server side in a SessionStore and
// handed to the browser as an HttpOnly cookie:
//
//	Request
//	   │
//	   ▼
//	RequireAdmin
//	   │
//	   ├─► Read "admin_session" cookie
//	   │
//	   ├─► sessions.Get(token)
//	   │
//	   └─► Store Session in context
//	           │
//	           ▼
//	       Handler (retrieves via GetSession)
//
// Sessions live in process memory; restarting the server logs every
// admin out, which is acceptable for an administrative surface.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the name of the admin session cookie.
const SessionCookie = "admin_session"

// sessionKey is the gin context key for the authenticated session.
// A typed key string prevents collisions with other context values.
const sessionKey = "timeofcode_admin_session"

// DefaultSessionTTL matches the original deployment's 7-day cookie.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session is an authenticated admin session.
type Session struct {
	Token     string
	Username  string
	Role      string
	ExpiresAt time.Time
}

// SessionStore tracks active admin sessions in process memory.
// Safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
}

// NewSessionStore creates a session store. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Issue creates a session for an authenticated admin and returns it.
// Each issue also sweeps out expired sessions so abandoned logins do
// not accumulate for the life of the process.
func (st *SessionStore) Issue(username, role string) Session {
	now := time.Now()
	sess := Session{
		Token:     uuid.NewString(),
		Username:  username,
		Role:      role,
		ExpiresAt: now.Add(st.ttl),
	}
	st.mu.Lock()
	for token, old := range st.sessions {
		if now.After(old.ExpiresAt) {
			delete(st.sessions, token)
		}
	}
	st.sessions[sess.Token] = sess
	st.mu.Unlock()
	return sess
}

// Get returns the session for a token, dropping it if expired.
func (st *SessionStore) Get(token string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[token]
	if !ok {
		return Session{}, false
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(st.sessions, token)
		return Session{}, false
	}
	return sess, true
}

// Revoke removes a session. Unknown tokens are a no-op.
func (st *SessionStore) Revoke(token string) {
	st.mu.Lock()
	delete(st.sessions, token)
	st.mu.Unlock()
}

// TTL returns the configured session lifetime.
func (st *SessionStore) TTL() time.Duration {
	return st.ttl
}

// SetSession stores the authenticated session in the gin context.
func SetSession(c *gin.Context, sess Session) {
	c.Set(sessionKey, sess)
}

// GetSession retrieves the authenticated session set by RequireAdmin.
// The second return is false when the request is not authenticated.
func GetSession(c *gin.Context) (Session, bool) {
	if v, exists := c.Get(sessionKey); exists {
		if sess, ok := v.(Session); ok {
			return sess, true
		}
	}
	return Session{}, false
}

// RequireAdmin guards write routes behind the admin session cookie.
//
// Requests without a valid, unexpired session are rejected with 401.
// On success the session is stored in the context for handlers.
func RequireAdmin(sessions *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		sess, ok := sessions.Get(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "session expired",
			})
			return
		}

		SetSession(c, sess)
		c.Next()
	}
}
