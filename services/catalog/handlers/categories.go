// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timeofcode/platform/services/catalog/datatypes"
	"github.com/timeofcode/platform/services/catalog/store"
)

// ListCategories returns all categories across all languages.
func ListCategories(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := st.GetCategories(c.Request.Context())
		if err != nil {
			respondStoreError(c, "category", err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GetCategory returns a single category by id.
func GetCategory(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := st.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "category", err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// ListCategoryTopics returns a category's topics in sibling order.
func ListCategoryTopics(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		topics, err := st.TopicsByCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "category", err)
			return
		}
		c.JSON(http.StatusOK, topics)
	}
}

// CreateCategory adds a new category. The parent language id is
// trusted; referential integrity is enforced at delete time.
func CreateCategory(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateCategoryRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cat, err := st.CreateCategory(c.Request.Context(), datatypes.Category{
			Name:        req.Name,
			Description: req.Description,
			LanguageID:  req.LanguageID,
			Order:       req.Order,
		})
		if err != nil {
			respondStoreError(c, "category", err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// UpdateCategory merges a partial update over an existing category.
func UpdateCategory(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		patch, ok := bindPatch(c)
		if !ok {
			return
		}
		cat, err := st.UpdateCategory(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			respondStoreError(c, "category", err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// DeleteCategory cascades topics and articles; the parent language is
// untouched.
func DeleteCategory(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		existed, err := st.DeleteCategoryCascade(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "category", err)
			return
		}
		if !existed {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
