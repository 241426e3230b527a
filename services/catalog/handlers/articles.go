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

// ListArticles returns all articles across all topics.
func ListArticles(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		articles, err := st.GetArticles(c.Request.Context())
		if err != nil {
			respondStoreError(c, "article", err)
			return
		}
		c.JSON(http.StatusOK, articles)
	}
}

// GetArticle returns a single article, embedded code examples included.
func GetArticle(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		art, err := st.GetArticle(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "article", err)
			return
		}
		c.JSON(http.StatusOK, art)
	}
}

// CreateArticle adds a new article under a topic.
func CreateArticle(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateArticleRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		art, err := st.CreateArticle(c.Request.Context(), datatypes.Article{
			Title:    req.Title,
			Content:  req.Content,
			TopicID:  req.TopicID,
			Order:    req.Order,
			Examples: req.Examples,
		})
		if err != nil {
			respondStoreError(c, "article", err)
			return
		}
		c.JSON(http.StatusCreated, art)
	}
}

// UpdateArticle merges a partial update over an existing article.
// Patching "examples" replaces the embedded list wholesale.
func UpdateArticle(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		patch, ok := bindPatch(c)
		if !ok {
			return
		}
		art, err := st.UpdateArticle(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			respondStoreError(c, "article", err)
			return
		}
		c.JSON(http.StatusOK, art)
	}
}

// DeleteArticle removes the article and its embedded examples. No
// fan-out: articles are the leaves of the hierarchy.
func DeleteArticle(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		existed, err := st.DeleteArticle(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "article", err)
			return
		}
		if !existed {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
