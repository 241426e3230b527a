// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timeofcode/platform/services/catalog/datatypes"
	"github.com/timeofcode/platform/services/catalog/store"
)

// ListLanguages returns all languages in the catalog.
func ListLanguages(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		languages, err := st.GetLanguages(c.Request.Context())
		if err != nil {
			respondStoreError(c, "language", err)
			return
		}
		c.JSON(http.StatusOK, languages)
	}
}

// GetLanguage returns a single language by id.
func GetLanguage(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, err := st.GetLanguage(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "language", err)
			return
		}
		c.JSON(http.StatusOK, lang)
	}
}

// ListLanguageCategories returns a language's categories in sibling
// order. An unknown language yields an empty array, not an error.
func ListLanguageCategories(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := st.CategoriesByLanguage(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "language", err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// CreateLanguage adds a new language to the catalog.
func CreateLanguage(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateLanguageRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lang, err := st.CreateLanguage(c.Request.Context(), datatypes.Language{
			Name:        req.Name,
			Description: req.Description,
			Icon:        req.Icon,
			Difficulty:  req.Difficulty,
			Popularity:  req.Popularity,
			Category:    req.Category,
		})
		if err != nil {
			respondStoreError(c, "language", err)
			return
		}
		slog.Info("language created", "id", lang.ID, "name", lang.Name)
		c.JSON(http.StatusCreated, lang)
	}
}

// UpdateLanguage merges a partial update over an existing language.
func UpdateLanguage(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		patch, ok := bindPatch(c)
		if !ok {
			return
		}
		lang, err := st.UpdateLanguage(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			respondStoreError(c, "language", err)
			return
		}
		c.JSON(http.StatusOK, lang)
	}
}

// DeleteLanguage cascades: the language and every category, topic and
// article underneath it are removed.
func DeleteLanguage(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		existed, err := st.DeleteLanguageCascade(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "language", err)
			return
		}
		if !existed {
			c.JSON(http.StatusNotFound, gin.H{"error": "language not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
