// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/timeofcode/platform/services/catalog/datatypes"
	"github.com/timeofcode/platform/services/catalog/middleware"
	"github.com/timeofcode/platform/services/catalog/observability"
	"github.com/timeofcode/platform/services/catalog/store"
)

// Login authenticates an admin and issues a session cookie.
//
// Unknown usernames and wrong passwords are indistinguishable to the
// caller: both return 401 with the same message.
func Login(st *store.Store, sessions *middleware.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.LoginRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		admin, err := st.GetAdmin(c.Request.Context(), req.Username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				observability.RecordLogin("failure")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			respondStoreError(c, "admin", err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
			observability.RecordLogin("failure")
			slog.Warn("failed admin login", "username", req.Username)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		sess := sessions.Issue(admin.Username, admin.Role)
		observability.RecordLogin("success")

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, sess.Token,
			int(sessions.TTL().Seconds()), "/", "", false, true)

		slog.Info("admin logged in", "username", admin.Username, "role", admin.Role)
		c.JSON(http.StatusOK, gin.H{
			"username": admin.Username,
			"role":     admin.Role,
		})
	}
}

// Logout revokes the current session and clears the cookie. Safe to
// call without a session.
func Logout(sessions *middleware.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
			sessions.Revoke(token)
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// SessionInfo reports the authenticated admin behind the request. The
// route is guarded by RequireAdmin, so a missing session here means a
// wiring bug rather than a client error.
func SessionInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"username":  sess.Username,
			"role":      sess.Role,
			"expiresAt": sess.ExpiresAt,
		})
	}
}
