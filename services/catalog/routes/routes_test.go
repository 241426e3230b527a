// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/timeofcode/platform/services/catalog/datatypes"
	"github.com/timeofcode/platform/services/catalog/middleware"
	"github.com/timeofcode/platform/services/catalog/store"
)

// ============================================================================
// Test Setup
// ============================================================================

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store, *middleware.SessionStore) {
	t.Helper()
	st := store.New(store.InMemoryConfig())
	if err := st.Open(); err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	sessions := middleware.NewSessionStore(0)
	router := gin.New()
	SetupRoutes(router, st, sessions)
	return router, st, sessions
}

// adminCookie issues a session and returns the matching cookie.
func adminCookie(sessions *middleware.SessionStore) *http.Cookie {
	sess := sessions.Issue("admin", datatypes.RoleAdmin)
	return &http.Cookie{Name: middleware.SessionCookie, Value: sess.Token}
}

// ============================================================================
// Route Registration
// ============================================================================

func TestSetupRoutes_RegistersAllRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	expected := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/api/health"},
		{"GET", "/metrics"},
		{"GET", "/api/languages"},
		{"GET", "/api/languages/:id"},
		{"GET", "/api/languages/:id/categories"},
		{"POST", "/api/languages"},
		{"PUT", "/api/languages/:id"},
		{"DELETE", "/api/languages/:id"},
		{"GET", "/api/categories"},
		{"GET", "/api/categories/:id"},
		{"GET", "/api/categories/:id/topics"},
		{"POST", "/api/categories"},
		{"PUT", "/api/categories/:id"},
		{"DELETE", "/api/categories/:id"},
		{"GET", "/api/topics"},
		{"GET", "/api/topics/:id"},
		{"GET", "/api/topics/:id/articles"},
		{"POST", "/api/topics"},
		{"PUT", "/api/topics/:id"},
		{"DELETE", "/api/topics/:id"},
		{"GET", "/api/articles"},
		{"GET", "/api/articles/:id"},
		{"POST", "/api/articles"},
		{"PUT", "/api/articles/:id"},
		{"DELETE", "/api/articles/:id"},
		{"POST", "/api/auth/login"},
		{"POST", "/api/auth/logout"},
		{"GET", "/api/auth/session"},
	}

	routes := router.Routes()
	for _, want := range expected {
		found := false
		for _, r := range routes {
			if r.Method == want.method && r.Path == want.path {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected route %s %s not found", want.method, want.path)
		}
	}
}

// ============================================================================
// Public Read Surface
// ============================================================================

func TestPublicReads_NoAuthRequired(t *testing.T) {
	router, _, _ := newTestRouter(t)

	paths := []string{
		"/health",
		"/api/languages",
		"/api/categories",
		"/api/topics",
		"/api/articles",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusOK)
		}
	}
}

func TestHealthCheck_Body(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
	if body["timestamp"] == "" {
		t.Error("timestamp missing from health body")
	}
}

// ============================================================================
// Write Surface Authentication
// ============================================================================

func TestWrites_RejectedWithoutSession(t *testing.T) {
	router, _, _ := newTestRouter(t)

	requests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/languages"},
		{"PUT", "/api/languages/507f1f77bcf86cd799439011"},
		{"DELETE", "/api/languages/507f1f77bcf86cd799439011"},
		{"POST", "/api/articles"},
		{"DELETE", "/api/topics/42"},
	}
	for _, r := range requests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(r.method, r.path, bytes.NewBufferString("{}"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want %d", r.method, r.path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestWrites_AcceptedWithSession(t *testing.T) {
	router, st, sessions := newTestRouter(t)
	cookie := adminCookie(sessions)

	body, _ := json.Marshal(datatypes.CreateLanguageRequest{
		Name:        "Go",
		Description: "compiled and concurrent",
		Difficulty:  2,
		Popularity:  4,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/languages", bytes.NewBuffer(body))
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/languages status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var lang datatypes.Language
	if err := json.Unmarshal(w.Body.Bytes(), &lang); err != nil {
		t.Fatalf("decoding created language: %v", err)
	}
	if len(lang.ID) != 24 {
		t.Errorf("created language id = %q, want 24-char content id", lang.ID)
	}

	// Visible through the store too.
	langs, err := st.GetLanguages(req.Context())
	if err != nil {
		t.Fatalf("listing languages: %v", err)
	}
	if len(langs) != 1 {
		t.Errorf("store has %d languages, want 1", len(langs))
	}
}

// ============================================================================
// End-to-End Hierarchy Flow
// ============================================================================

func TestHierarchy_CreateListCascade(t *testing.T) {
	router, _, sessions := newTestRouter(t)
	cookie := adminCookie(sessions)

	do := func(method, path string, payload any) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		if payload != nil {
			if err := json.NewEncoder(&buf).Encode(payload); err != nil {
				t.Fatalf("encoding payload: %v", err)
			}
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, &buf)
		req.AddCookie(cookie)
		router.ServeHTTP(w, req)
		return w
	}

	// Language
	w := do("POST", "/api/languages", datatypes.CreateLanguageRequest{
		Name: "JavaScript", Description: "powers the web", Difficulty: 1, Popularity: 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create language status = %d: %s", w.Code, w.Body.String())
	}
	var lang datatypes.Language
	_ = json.Unmarshal(w.Body.Bytes(), &lang)

	// Category under it
	w = do("POST", "/api/categories", datatypes.CreateCategoryRequest{
		Name: "Fundamentals", LanguageID: lang.ID, Order: 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category status = %d: %s", w.Code, w.Body.String())
	}
	var cat datatypes.Category
	_ = json.Unmarshal(w.Body.Bytes(), &cat)

	// Topic under it
	w = do("POST", "/api/topics", datatypes.CreateTopicRequest{
		Title: "Variables", CategoryID: cat.ID, Order: 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create topic status = %d: %s", w.Code, w.Body.String())
	}
	var topic datatypes.Topic
	_ = json.Unmarshal(w.Body.Bytes(), &topic)

	// Article under it
	w = do("POST", "/api/articles", datatypes.CreateArticleRequest{
		Title: "Intro", Content: "# Intro", TopicID: topic.ID, Order: 1,
		Examples: []datatypes.CodeExample{{Code: "let x = 1;", Language: "javascript"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create article status = %d: %s", w.Code, w.Body.String())
	}

	// Child listing sees the category.
	w = do("GET", "/api/languages/"+lang.ID+"/categories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list categories status = %d", w.Code)
	}
	var cats []datatypes.Category
	_ = json.Unmarshal(w.Body.Bytes(), &cats)
	if len(cats) != 1 {
		t.Fatalf("language has %d categories, want 1", len(cats))
	}

	// Cascade delete the language; everything underneath vanishes.
	w = do("DELETE", "/api/languages/"+lang.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete language status = %d, want %d", w.Code, http.StatusNoContent)
	}
	w = do("GET", "/api/articles", nil)
	var arts []datatypes.Article
	_ = json.Unmarshal(w.Body.Bytes(), &arts)
	if len(arts) != 0 {
		t.Errorf("articles remaining after cascade = %d, want 0", len(arts))
	}

	// Deleting again is a 404.
	w = do("DELETE", "/api/languages/"+lang.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ============================================================================
// Error Mapping
// ============================================================================

func TestErrorMapping(t *testing.T) {
	router, _, _ := newTestRouter(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"malformed id", "/api/languages/not-an-id!", http.StatusBadRequest},
		{"unknown content id", "/api/languages/507f1f77bcf86cd799439011", http.StatusNotFound},
		{"unknown seq id", "/api/languages/9999", http.StatusNotFound},
		{"unknown parent lists empty", "/api/languages/507f1f77bcf86cd799439011/categories", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.want)
			}
		})
	}
}

// ============================================================================
// Auth Flow
// ============================================================================

func TestAuthFlow_LoginLogout(t *testing.T) {
	router, st, _ := newTestRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	if err := st.PutAdmin(req.Context(), datatypes.Admin{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         datatypes.RoleAdmin,
	}); err != nil {
		t.Fatalf("storing admin: %v", err)
	}

	login := func(username, password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(datatypes.LoginRequest{Username: username, Password: password})
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		router.ServeHTTP(w, r)
		return w
	}

	// Wrong password and unknown user look identical.
	if w := login("admin", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if w := login("ghost", "hunter2"); w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// Successful login sets the session cookie.
	w := login("admin", "hunter2")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("login did not set session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	// The cookie authenticates the session endpoint.
	w2 := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/auth/session", nil)
	r.AddCookie(sessionCookie)
	router.ServeHTTP(w2, r)
	if w2.Code != http.StatusOK {
		t.Fatalf("session info status = %d: %s", w2.Code, w2.Body.String())
	}
	var info map[string]any
	_ = json.Unmarshal(w2.Body.Bytes(), &info)
	if info["username"] != "admin" {
		t.Errorf("session username = %v, want admin", info["username"])
	}

	// Logout revokes it.
	w3 := httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/api/auth/logout", nil)
	r.AddCookie(sessionCookie)
	router.ServeHTTP(w3, r)
	if w3.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w3.Code)
	}

	w4 := httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/auth/session", nil)
	r.AddCookie(sessionCookie)
	router.ServeHTTP(w4, r)
	if w4.Code != http.StatusUnauthorized {
		t.Errorf("session after logout status = %d, want %d", w4.Code, http.StatusUnauthorized)
	}
}
