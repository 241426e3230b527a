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

// ListTopics returns all topics across all categories.
func ListTopics(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		topics, err := st.GetTopics(c.Request.Context())
		if err != nil {
			respondStoreError(c, "topic", err)
			return
		}
		c.JSON(http.StatusOK, topics)
	}
}

// GetTopic returns a single topic by id.
func GetTopic(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		topic, err := st.GetTopic(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "topic", err)
			return
		}
		c.JSON(http.StatusOK, topic)
	}
}

// ListTopicArticles returns a topic's articles in sibling order.
func ListTopicArticles(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		articles, err := st.ArticlesByTopic(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "topic", err)
			return
		}
		c.JSON(http.StatusOK, articles)
	}
}

// CreateTopic adds a new topic under a category.
func CreateTopic(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateTopicRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		topic, err := st.CreateTopic(c.Request.Context(), datatypes.Topic{
			Title:       req.Title,
			Description: req.Description,
			CategoryID:  req.CategoryID,
			Order:       req.Order,
		})
		if err != nil {
			respondStoreError(c, "topic", err)
			return
		}
		c.JSON(http.StatusCreated, topic)
	}
}

// UpdateTopic merges a partial update over an existing topic.
func UpdateTopic(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		patch, ok := bindPatch(c)
		if !ok {
			return
		}
		topic, err := st.UpdateTopic(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			respondStoreError(c, "topic", err)
			return
		}
		c.JSON(http.StatusOK, topic)
	}
}

// DeleteTopic cascades the topic's articles, then the topic.
func DeleteTopic(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		existed, err := st.DeleteTopicCascade(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "topic", err)
			return
		}
		if !existed {
			c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
