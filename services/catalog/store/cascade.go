// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/timeofcode/platform/services/catalog/datatypes"
	"github.com/timeofcode/platform/services/catalog/observability"
)

// This file implements the hierarchy side of the store: parent-scoped
// child listings and cascading deletes.
//
// Cascades delete strictly leaf-to-root (articles, then topics, then
// categories, then the language). A crash mid-cascade can leave orphan
// leaf records pointing at a deleted parent, which child listings
// simply never return; it can never leave a parent deleted before its
// children are gone at a level below it. Re-running a failed cascade is
// safe: deleting an already-deleted record is a no-op.
//
// Each cascade holds the store's write lock for its whole run, so
// readers in this process never observe a partially cascaded subtree.

// deleteChunkSize bounds the number of deletes per badger transaction
// to stay clear of ErrTxnTooBig.
const deleteChunkSize = 64

// refSet holds every string form that denotes one parent entity in a
// child's reference field: the canonical content id, the legacy
// sequence alias, and the caller's raw input. Legacy records may store
// any of these in their parent field.
type refSet map[string]struct{}

func (r refSet) add(s string) {
	if s != "" {
		r[s] = struct{}{}
	}
}

func (r refSet) contains(s string) bool {
	_, ok := r[s]
	return ok
}

// parentRefs resolves a caller-supplied parent id into the set of
// strings children may use to reference it. When the parent record
// does not exist, the set still carries the raw input so dangling
// children with that exact reference are matched (delete paths) while
// listings naturally come back empty.
func parentRefs[T any](s *Store, ctx context.Context, prefix string, key LookupKey, id ident[T], raw string) (refSet, error) {
	refs := refSet{}
	refs.add(raw)
	refs.add(key.String())

	rec, found, err := findByKeyLocked(s, ctx, prefix, key, id)
	if err != nil {
		return nil, err
	}
	if found {
		recID, recSeq := id(rec)
		refs.add(recID)
		if recSeq != 0 {
			refs.add(strconv.FormatInt(recSeq, 10))
		}
	}
	return refs, nil
}

// entityRefs collects the reference forms of a set of already-loaded
// records (content ids plus sequence aliases).
func entityRefs[T any](records []T, id ident[T]) refSet {
	refs := refSet{}
	for _, rec := range records {
		recID, recSeq := id(rec)
		refs.add(recID)
		if recSeq != 0 {
			refs.add(strconv.FormatInt(recSeq, 10))
		}
	}
	return refs
}

// =============================================================================
// Parent-scoped child listings
// =============================================================================

// CategoriesByLanguage returns the categories of a language sorted by
// their sibling order. An unknown language id yields an empty slice,
// never an error; only a malformed id fails (ErrInvalidIdentifier).
func (s *Store) CategoriesByLanguage(ctx context.Context, languageID string) ([]datatypes.Category, error) {
	observability.RecordStoreOp("categories", "list_by_language")
	key, err := ResolveKey(languageID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	refs, err := parentRefs(s, ctx, prefixLanguage, key, languageIdent, languageID)
	if err != nil {
		return nil, err
	}
	all, err := listAllLocked[datatypes.Category](s, ctx, prefixCategory)
	if err != nil {
		return nil, err
	}
	out := []datatypes.Category{}
	for _, cat := range all {
		if refs.contains(cat.LanguageID) {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// TopicsByCategory returns the topics of a category sorted by their
// sibling order. Same empty-not-error contract as CategoriesByLanguage.
func (s *Store) TopicsByCategory(ctx context.Context, categoryID string) ([]datatypes.Topic, error) {
	observability.RecordStoreOp("topics", "list_by_category")
	key, err := ResolveKey(categoryID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	refs, err := parentRefs(s, ctx, prefixCategory, key, categoryIdent, categoryID)
	if err != nil {
		return nil, err
	}
	all, err := listAllLocked[datatypes.Topic](s, ctx, prefixTopic)
	if err != nil {
		return nil, err
	}
	out := []datatypes.Topic{}
	for _, topic := range all {
		if refs.contains(topic.CategoryID) {
			out = append(out, topic)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// ArticlesByTopic returns the articles of a topic sorted by their
// sibling order. Same empty-not-error contract as CategoriesByLanguage.
func (s *Store) ArticlesByTopic(ctx context.Context, topicID string) ([]datatypes.Article, error) {
	observability.RecordStoreOp("articles", "list_by_topic")
	key, err := ResolveKey(topicID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	refs, err := parentRefs(s, ctx, prefixTopic, key, topicIdent, topicID)
	if err != nil {
		return nil, err
	}
	all, err := listAllLocked[datatypes.Article](s, ctx, prefixArticle)
	if err != nil {
		return nil, err
	}
	out := []datatypes.Article{}
	for _, art := range all {
		if refs.contains(art.TopicID) {
			out = append(out, art)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// =============================================================================
// Cascading deletes
// =============================================================================

// DeleteLanguageCascade removes a language and every category, topic
// and article underneath it. Returns whether the language existed.
func (s *Store) DeleteLanguageCascade(ctx context.Context, languageID string) (bool, error) {
	key, err := ResolveKey(languageID)
	if err != nil {
		return false, err
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	lang, found, err := findByKeyLocked(s, ctx, prefixLanguage, key, languageIdent)
	if err != nil {
		observability.RecordCascade("language", "error", time.Since(start))
		return false, err
	}
	if !found {
		observability.RecordCascade("language", "missing", time.Since(start))
		return false, nil
	}

	langRefs := refSet{}
	langRefs.add(languageID)
	langRefs.add(lang.ID)
	if lang.Seq != 0 {
		langRefs.add(strconv.FormatInt(lang.Seq, 10))
	}

	// Fan-out queries before any delete: the full victim set is known
	// up front.
	cats, err := s.matchingCategoriesLocked(ctx, langRefs)
	if err != nil {
		observability.RecordCascade("language", "error", time.Since(start))
		return false, err
	}
	catRefs := entityRefs(cats, categoryIdent)

	topics, err := s.matchingTopicsLocked(ctx, catRefs)
	if err != nil {
		observability.RecordCascade("language", "error", time.Since(start))
		return false, err
	}
	topicRefs := entityRefs(topics, topicIdent)

	// Leaf to root.
	if err := s.deleteArticlesOfLocked(ctx, topicRefs); err != nil {
		observability.RecordCascade("language", "error", time.Since(start))
		return false, err
	}
	if err := deleteRecords(s, prefixTopic, topics, topicIdent); err != nil {
		observability.RecordCascade("language", "error", time.Since(start))
		return false, err
	}
	if err := deleteRecords(s, prefixCategory, cats, categoryIdent); err != nil {
		observability.RecordCascade("language", "error", time.Since(start))
		return false, err
	}
	if _, err := deleteByKeyLocked(s, ctx, prefixLanguage, key, languageIdent); err != nil {
		observability.RecordCascade("language", "error", time.Since(start))
		return false, err
	}

	s.logger.Info("language cascade completed",
		"language", lang.ID,
		"categories", len(cats),
		"topics", len(topics),
	)
	observability.RecordCascade("language", "completed", time.Since(start))
	return true, nil
}

// DeleteCategoryCascade removes a category and every topic and article
// underneath it. The parent language is untouched. Returns whether the
// category existed.
func (s *Store) DeleteCategoryCascade(ctx context.Context, categoryID string) (bool, error) {
	key, err := ResolveKey(categoryID)
	if err != nil {
		return false, err
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, found, err := findByKeyLocked(s, ctx, prefixCategory, key, categoryIdent)
	if err != nil {
		observability.RecordCascade("category", "error", time.Since(start))
		return false, err
	}
	if !found {
		observability.RecordCascade("category", "missing", time.Since(start))
		return false, nil
	}

	catRefs := refSet{}
	catRefs.add(categoryID)
	catRefs.add(cat.ID)
	if cat.Seq != 0 {
		catRefs.add(strconv.FormatInt(cat.Seq, 10))
	}

	topics, err := s.matchingTopicsLocked(ctx, catRefs)
	if err != nil {
		observability.RecordCascade("category", "error", time.Since(start))
		return false, err
	}
	topicRefs := entityRefs(topics, topicIdent)

	if err := s.deleteArticlesOfLocked(ctx, topicRefs); err != nil {
		observability.RecordCascade("category", "error", time.Since(start))
		return false, err
	}
	if err := deleteRecords(s, prefixTopic, topics, topicIdent); err != nil {
		observability.RecordCascade("category", "error", time.Since(start))
		return false, err
	}
	if _, err := deleteByKeyLocked(s, ctx, prefixCategory, key, categoryIdent); err != nil {
		observability.RecordCascade("category", "error", time.Since(start))
		return false, err
	}

	s.logger.Info("category cascade completed",
		"category", cat.ID,
		"topics", len(topics),
	)
	observability.RecordCascade("category", "completed", time.Since(start))
	return true, nil
}

// DeleteTopicCascade removes a topic and its articles. Returns whether
// the topic existed.
func (s *Store) DeleteTopicCascade(ctx context.Context, topicID string) (bool, error) {
	key, err := ResolveKey(topicID)
	if err != nil {
		return false, err
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	topic, found, err := findByKeyLocked(s, ctx, prefixTopic, key, topicIdent)
	if err != nil {
		observability.RecordCascade("topic", "error", time.Since(start))
		return false, err
	}
	if !found {
		observability.RecordCascade("topic", "missing", time.Since(start))
		return false, nil
	}

	topicRefs := refSet{}
	topicRefs.add(topicID)
	topicRefs.add(topic.ID)
	if topic.Seq != 0 {
		topicRefs.add(strconv.FormatInt(topic.Seq, 10))
	}

	if err := s.deleteArticlesOfLocked(ctx, topicRefs); err != nil {
		observability.RecordCascade("topic", "error", time.Since(start))
		return false, err
	}
	if _, err := deleteByKeyLocked(s, ctx, prefixTopic, key, topicIdent); err != nil {
		observability.RecordCascade("topic", "error", time.Since(start))
		return false, err
	}

	observability.RecordCascade("topic", "completed", time.Since(start))
	return true, nil
}

// DeleteArticle removes a single article and its embedded examples.
// No fan-out: the article is the leaf of the hierarchy.
func (s *Store) DeleteArticle(ctx context.Context, articleID string) (bool, error) {
	observability.RecordStoreOp("articles", "delete")
	key, err := ResolveKey(articleID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByKeyLocked(s, ctx, prefixArticle, key, articleIdent)
}

// =============================================================================
// Cascade internals
// =============================================================================

func (s *Store) matchingCategoriesLocked(ctx context.Context, langRefs refSet) ([]datatypes.Category, error) {
	all, err := listAllLocked[datatypes.Category](s, ctx, prefixCategory)
	if err != nil {
		return nil, err
	}
	var out []datatypes.Category
	for _, cat := range all {
		if langRefs.contains(cat.LanguageID) {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (s *Store) matchingTopicsLocked(ctx context.Context, catRefs refSet) ([]datatypes.Topic, error) {
	all, err := listAllLocked[datatypes.Topic](s, ctx, prefixTopic)
	if err != nil {
		return nil, err
	}
	var out []datatypes.Topic
	for _, topic := range all {
		if catRefs.contains(topic.CategoryID) {
			out = append(out, topic)
		}
	}
	return out, nil
}

func (s *Store) deleteArticlesOfLocked(ctx context.Context, topicRefs refSet) error {
	all, err := listAllLocked[datatypes.Article](s, ctx, prefixArticle)
	if err != nil {
		return err
	}
	var victims []datatypes.Article
	for _, art := range all {
		if topicRefs.contains(art.TopicID) {
			victims = append(victims, art)
		}
	}
	return deleteRecords(s, prefixArticle, victims, articleIdent)
}

// deleteRecords removes the given records in chunks. Missing keys are
// no-ops, which keeps cascade re-runs idempotent. Callers must hold
// the store's write lock.
func deleteRecords[T any](s *Store, prefix string, records []T, id ident[T]) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	for start := 0; start < len(records); start += deleteChunkSize {
		end := min(start+deleteChunkSize, len(records))
		chunk := records[start:end]
		err := db.Update(func(txn *badger.Txn) error {
			for _, rec := range chunk {
				recID, _ := id(rec)
				if err := txn.Delete([]byte(prefix + recID)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
