// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/timeofcode/platform/services/catalog/handlers"
	"github.com/timeofcode/platform/services/catalog/middleware"
	"github.com/timeofcode/platform/services/catalog/store"
)

// SetupRoutes registers the catalog REST surface on the router.
//
// Reads are public; every mutation sits behind the admin session
// cookie. The /api prefix matches the paths the web frontend expects.
func SetupRoutes(router *gin.Engine, st *store.Store, sessions *middleware.SessionStore) {
	router.GET("/health", handlers.HealthCheck())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck())

		admin := middleware.RequireAdmin(sessions)

		languages := api.Group("/languages")
		{
			languages.GET("", handlers.ListLanguages(st))
			languages.GET("/:id", handlers.GetLanguage(st))
			languages.GET("/:id/categories", handlers.ListLanguageCategories(st))
			languages.POST("", admin, handlers.CreateLanguage(st))
			languages.PUT("/:id", admin, handlers.UpdateLanguage(st))
			languages.DELETE("/:id", admin, handlers.DeleteLanguage(st))
		}

		categories := api.Group("/categories")
		{
			categories.GET("", handlers.ListCategories(st))
			categories.GET("/:id", handlers.GetCategory(st))
			categories.GET("/:id/topics", handlers.ListCategoryTopics(st))
			categories.POST("", admin, handlers.CreateCategory(st))
			categories.PUT("/:id", admin, handlers.UpdateCategory(st))
			categories.DELETE("/:id", admin, handlers.DeleteCategory(st))
		}

		topics := api.Group("/topics")
		{
			topics.GET("", handlers.ListTopics(st))
			topics.GET("/:id", handlers.GetTopic(st))
			topics.GET("/:id/articles", handlers.ListTopicArticles(st))
			topics.POST("", admin, handlers.CreateTopic(st))
			topics.PUT("/:id", admin, handlers.UpdateTopic(st))
			topics.DELETE("/:id", admin, handlers.DeleteTopic(st))
		}

		articles := api.Group("/articles")
		{
			articles.GET("", handlers.ListArticles(st))
			articles.GET("/:id", handlers.GetArticle(st))
			articles.POST("", admin, handlers.CreateArticle(st))
			articles.PUT("/:id", admin, handlers.UpdateArticle(st))
			articles.DELETE("/:id", admin, handlers.DeleteArticle(st))
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", handlers.Login(st, sessions))
			auth.POST("/logout", handlers.Logout(sessions))
			auth.GET("/session", admin, handlers.SessionInfo())
		}
	}
}
