// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ============================================================================
// SessionStore Tests
// ============================================================================

func TestSessionStore_IssueAndGet(t *testing.T) {
	sessions := NewSessionStore(time.Hour)

	sess := sessions.Issue("admin", "admin")
	if sess.Token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if sess.Username != "admin" {
		t.Errorf("username = %q, want admin", sess.Username)
	}

	got, ok := sessions.Get(sess.Token)
	if !ok {
		t.Fatal("Get() did not find issued session")
	}
	if got.Token != sess.Token {
		t.Errorf("token mismatch: %q != %q", got.Token, sess.Token)
	}
}

func TestSessionStore_UnknownToken(t *testing.T) {
	sessions := NewSessionStore(time.Hour)

	if _, ok := sessions.Get("no-such-token"); ok {
		t.Error("Get() found a session for an unknown token")
	}
}

func TestSessionStore_ExpiredSessionDropped(t *testing.T) {
	// Negative TTL would fall back to the default, so issue normally
	// and expire the session by hand.
	sessions := NewSessionStore(time.Hour)
	sess := sessions.Issue("admin", "admin")

	sessions.mu.Lock()
	expired := sessions.sessions[sess.Token]
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	sessions.sessions[sess.Token] = expired
	sessions.mu.Unlock()

	if _, ok := sessions.Get(sess.Token); ok {
		t.Error("Get() returned an expired session")
	}
	// Expired sessions are removed, not just hidden.
	sessions.mu.Lock()
	_, still := sessions.sessions[sess.Token]
	sessions.mu.Unlock()
	if still {
		t.Error("expired session not removed from store")
	}
}

func TestSessionStore_IssueSweepsExpired(t *testing.T) {
	sessions := NewSessionStore(time.Hour)
	stale := sessions.Issue("admin", "admin")

	sessions.mu.Lock()
	expired := sessions.sessions[stale.Token]
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	sessions.sessions[stale.Token] = expired
	sessions.mu.Unlock()

	// A new login evicts the abandoned session without anyone looking
	// its token up again.
	fresh := sessions.Issue("admin", "admin")

	sessions.mu.Lock()
	_, staleKept := sessions.sessions[stale.Token]
	_, freshKept := sessions.sessions[fresh.Token]
	sessions.mu.Unlock()
	if staleKept {
		t.Error("expired session survived a subsequent Issue")
	}
	if !freshKept {
		t.Error("fresh session missing after Issue")
	}
}

func TestSessionStore_Revoke(t *testing.T) {
	sessions := NewSessionStore(time.Hour)
	sess := sessions.Issue("admin", "admin")

	sessions.Revoke(sess.Token)
	if _, ok := sessions.Get(sess.Token); ok {
		t.Error("Get() found a revoked session")
	}

	// Revoking again is a no-op.
	sessions.Revoke(sess.Token)
}

func TestNewSessionStore_DefaultTTL(t *testing.T) {
	sessions := NewSessionStore(0)
	if sessions.TTL() != DefaultSessionTTL {
		t.Errorf("TTL() = %v, want %v", sessions.TTL(), DefaultSessionTTL)
	}
}

// ============================================================================
// RequireAdmin Tests
// ============================================================================

func requireAdminRouter(sessions *SessionStore) *gin.Engine {
	router := gin.New()
	router.GET("/guarded", RequireAdmin(sessions), func(c *gin.Context) {
		sess, ok := GetSession(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session missing from context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": sess.Username})
	})
	return router
}

func TestRequireAdmin_NoCookie(t *testing.T) {
	router := requireAdminRouter(NewSessionStore(time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/guarded", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAdmin_InvalidToken(t *testing.T) {
	router := requireAdminRouter(NewSessionStore(time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale-token"})
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAdmin_ValidSession(t *testing.T) {
	sessions := NewSessionStore(time.Hour)
	router := requireAdminRouter(sessions)
	sess := sessions.Issue("admin", "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sess.Token})
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

// ============================================================================
// CORS Tests
// ============================================================================

func corsRouter(origins []string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestCORS_AllowedOrigin(t *testing.T) {
	router := corsRouter([]string{"http://localhost:3000"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want the request origin", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	router := corsRouter([]string{"http://localhost:3000"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty for disallowed origin", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	router := corsRouter([]string{"http://localhost:3000"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
}
