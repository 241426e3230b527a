// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestApplyConfigDefaults(t *testing.T) {
	cfg := applyConfigDefaults(Config{})

	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.DataDir != "./data/catalog" {
		t.Errorf("DataDir = %q, want ./data/catalog", cfg.DataDir)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("AllowedOrigins = %v, want [http://localhost:3000]", cfg.AllowedOrigins)
	}
	if cfg.SessionTTL <= 0 {
		t.Errorf("SessionTTL = %v, want positive", cfg.SessionTTL)
	}
}

func TestApplyConfigDefaults_ExplicitValuesKept(t *testing.T) {
	cfg := applyConfigDefaults(Config{
		Port:           8080,
		DataDir:        "/srv/catalog",
		AllowedOrigins: []string{"https://timeofcode.dev"},
	})

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DataDir != "/srv/catalog" {
		t.Errorf("DataDir = %q, want /srv/catalog", cfg.DataDir)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://timeofcode.dev" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestNew_InMemory(t *testing.T) {
	svc, err := New(Config{InMemory: true, GinMode: gin.TestMode})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	router := svc.Router()
	if router == nil {
		t.Fatal("Router() returned nil")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNew_BadDataDir(t *testing.T) {
	// A file where the store directory should be.
	blocker := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("creating blocker file: %v", err)
	}

	_, err := New(Config{DataDir: filepath.Join(blocker, "db"), GinMode: gin.TestMode})
	if err == nil {
		t.Fatal("New() = nil error, want store open failure")
	}
}
