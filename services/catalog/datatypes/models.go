// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides the catalog entity models and API payloads.
//
// The catalog is a strict four-level tree:
//
//	Language → Category → Topic → Article (with embedded CodeExamples)
//
// Every record carries a canonical content id (`_id`) plus an optional
// legacy sequence alias (`seq`) left over from earlier schema revisions.
// New records only ever get a content id; the alias exists so links and
// bookmarks that predate the id migration keep resolving.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// catalogValidate is the shared validator for API payloads.
var catalogValidate = validator.New()

// =============================================================================
// Entities
// =============================================================================

// Language is the root of the catalog hierarchy.
type Language struct {
	ID          string   `json:"_id"`
	Seq         int64    `json:"seq,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon,omitempty"`
	Difficulty  int      `json:"difficulty"`
	Popularity  int      `json:"popularity"`
	Category    []string `json:"category"`
}

// Category groups topics within a language.
type Category struct {
	ID          string `json:"_id"`
	Seq         int64  `json:"seq,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LanguageID  string `json:"languageId"`
	Order       int    `json:"order"`
}

// Topic groups articles within a category.
type Topic struct {
	ID          string `json:"_id"`
	Seq         int64  `json:"seq,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	Order       int    `json:"order"`
}

// CodeExample is a runnable snippet embedded in an article. Examples
// are owned by their article and are never independently addressable.
type CodeExample struct {
	Code        string `json:"code"`
	Language    string `json:"language"`
	Description string `json:"description,omitempty"`
}

// Article is the leaf of the hierarchy: a markdown body plus an ordered
// list of embedded code examples.
type Article struct {
	ID       string        `json:"_id"`
	Seq      int64         `json:"seq,omitempty"`
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	TopicID  string        `json:"topicId"`
	Order    int           `json:"order"`
	Examples []CodeExample `json:"examples,omitempty"`
}

// Admin is a CMS administrator account. The password field holds a
// bcrypt hash. Admin records are storage-only; API responses never
// serialize this struct directly.
type Admin struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	Role         string `json:"role"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// Admin roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// =============================================================================
// API Payloads
// =============================================================================

// CreateLanguageRequest is the POST /api/languages payload.
type CreateLanguageRequest struct {
	Name        string   `json:"name" validate:"required,max=128"`
	Description string   `json:"description" validate:"required"`
	Icon        string   `json:"icon"`
	Difficulty  int      `json:"difficulty" validate:"gte=0,lte=10"`
	Popularity  int      `json:"popularity" validate:"gte=0"`
	Category    []string `json:"category"`
}

// Validate checks the payload against its constraints.
func (r CreateLanguageRequest) Validate() error {
	return catalogValidate.Struct(r)
}

// CreateCategoryRequest is the POST /api/categories payload.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description"`
	LanguageID  string `json:"languageId" validate:"required"`
	Order       int    `json:"order" validate:"gte=0"`
}

// Validate checks the payload against its constraints.
func (r CreateCategoryRequest) Validate() error {
	return catalogValidate.Struct(r)
}

// CreateTopicRequest is the POST /api/topics payload.
type CreateTopicRequest struct {
	Title       string `json:"title" validate:"required,max=256"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId" validate:"required"`
	Order       int    `json:"order" validate:"gte=0"`
}

// Validate checks the payload against its constraints.
func (r CreateTopicRequest) Validate() error {
	return catalogValidate.Struct(r)
}

// CreateArticleRequest is the POST /api/articles payload.
type CreateArticleRequest struct {
	Title    string        `json:"title" validate:"required,max=256"`
	Content  string        `json:"content" validate:"required"`
	TopicID  string        `json:"topicId" validate:"required"`
	Order    int           `json:"order" validate:"gte=0"`
	Examples []CodeExample `json:"examples" validate:"dive"`
}

// Validate checks the payload against its constraints.
func (r CreateArticleRequest) Validate() error {
	return catalogValidate.Struct(r)
}

// LoginRequest is the POST /api/auth/login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate checks the payload against its constraints.
func (r LoginRequest) Validate() error {
	return catalogValidate.Struct(r)
}
