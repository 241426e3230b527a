// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the gin handlers for the catalog REST API.
//
// Handlers are thin: they translate path parameters and JSON bodies
// into typed store calls and map the store's error taxonomy onto HTTP
// status codes. Child-list endpoints return 200 with an empty array
// for unknown parents; single-entity endpoints return 404.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timeofcode/platform/services/catalog/store"
)

// respondStoreError maps a store error onto the external taxonomy:
// malformed id or unusable patch → 400, missing record → 404, anything
// else is a backing-store failure → 500 (logged, not retried).
func respondStoreError(c *gin.Context, entity string, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + entity + " id"})
	case errors.Is(err, store.ErrInvalidPatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	default:
		slog.Error("store operation failed", "entity", entity, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindPatch decodes a partial-update body. The store drops protected
// fields (_id, seq) during the merge, so the patch is passed through
// as-is.
func bindPatch(c *gin.Context) (map[string]any, bool) {
	var patch map[string]any
	if err := c.BindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	return patch, true
}
