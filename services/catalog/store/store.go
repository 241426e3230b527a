// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store implements the catalog's persistence layer on BadgerDB.
//
// Four collections live in one keyspace, separated by prefix:
//
//	lang:<id>   languages
//	cat:<id>    categories
//	topic:<id>  topics
//	art:<id>    articles
//	admin:<username>
//
// Records are JSON values keyed by their canonical content id. Lookups
// accept either a content id or a legacy sequence alias; ResolveKey
// (key.go) normalizes the input and the collection helpers compare
// against the matching field.
//
// # Locking
//
// BadgerDB serializes individual transactions on its own. The store's
// RWMutex exists for cascade atomicity: every single-record operation
// holds the read side, a cascading delete (cascade.go) holds the write
// side for its whole leaf-to-root run, so no reader in this process can
// observe a partially cascaded subtree.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/timeofcode/platform/services/catalog/datatypes"
	"github.com/timeofcode/platform/services/catalog/observability"
)

// Collection key prefixes.
const (
	prefixLanguage = "lang:"
	prefixCategory = "cat:"
	prefixTopic    = "topic:"
	prefixArticle  = "art:"
	prefixAdmin    = "admin:"
)

// Config holds configuration for the catalog store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// GCInterval is how often to run value log garbage collection.
	// Zero disables GC; in-memory stores never run it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum garbage ratio that triggers a
	// value log rewrite (0.0-1.0).
	GCDiscardRatio float64

	// Logger receives store and BadgerDB log output.
	// If nil, slog.Default() is used and BadgerDB logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults for a persistent store.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is the catalog's backing store.
//
// A Store must be opened with Open before use; operations against an
// unopened store fail with ErrNotInitialized. Open is idempotent and
// the underlying connection is reused for the life of the process.
// Call Close on shutdown to release it.
type Store struct {
	cfg    Config
	logger *slog.Logger

	gcStop chan struct{}
	gcDone chan struct{}

	mu sync.RWMutex
	db *badger.DB
}

// New creates an unopened Store with the given configuration.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{cfg: cfg, logger: logger}
}

// Open establishes the backing BadgerDB connection.
//
// Description:
//
//	Opens the database at the configured path, creating the directory
//	if needed, or an in-memory instance when InMemory is set. Calling
//	Open on an already-open store is a no-op that reuses the existing
//	connection.
//
// Outputs:
//
//	error - Non-nil if the database cannot be opened.
func (s *Store) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	var opts badger.Options
	if s.cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if s.cfg.Path == "" {
			return errors.New("store: path is required for persistent database")
		}
		if err := os.MkdirAll(s.cfg.Path, 0750); err != nil {
			return fmt.Errorf("store: create database directory %s: %w", s.cfg.Path, err)
		}
		opts = badger.DefaultOptions(s.cfg.Path)
	}
	opts = opts.WithSyncWrites(s.cfg.SyncWrites)
	if s.cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: s.cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("store: open badger database: %w", err)
	}
	s.db = db

	// Badger only reclaims value log space when the application asks,
	// so a long-lived persistent store needs the periodic GC loop.
	if !s.cfg.InMemory && s.cfg.GCInterval > 0 {
		s.gcStop = make(chan struct{})
		s.gcDone = make(chan struct{})
		go s.runGC(db)
	}

	s.logger.Info("catalog store opened",
		"path", s.cfg.Path,
		"in_memory", s.cfg.InMemory,
	)
	return nil
}

// runGC triggers value log garbage collection at the configured
// interval until Close signals the stop channel.
func (s *Store) runGC(db *badger.DB) {
	defer close(s.gcDone)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.gcStop:
			return
		case <-ticker.C:
			err := db.RunValueLogGC(s.cfg.GCDiscardRatio)
			if err == nil {
				s.logger.Debug("badger value log GC completed")
			} else if !errors.Is(err, badger.ErrNoRewrite) {
				// ErrNoRewrite means no GC was needed, not an error.
				s.logger.Warn("badger value log GC error", "error", err)
			}
		}
	}
}

// Close releases the backing connection. Safe to call on an unopened
// store; subsequent operations fail with ErrNotInitialized.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if s.gcStop != nil {
		close(s.gcStop)
		<-s.gcDone
		s.gcStop = nil
		s.gcDone = nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Reset drops all catalog collections. Admin accounts survive.
// Used by the seed tool to rebuild the sample catalog from scratch.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, prefix := range []string{prefixLanguage, prefixCategory, prefixTopic, prefixArticle} {
		if err := s.db.DropPrefix([]byte(prefix)); err != nil {
			return fmt.Errorf("store: drop prefix %s: %w", prefix, err)
		}
	}
	return nil
}

// handle returns the open database or ErrNotInitialized. Callers must
// hold s.mu (either side).
func (s *Store) handle() (*badger.DB, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// =============================================================================
// Generic collection helpers
// =============================================================================

// ident extracts a record's canonical id and legacy sequence alias.
type ident[T any] func(T) (id string, seq int64)

func languageIdent(l datatypes.Language) (string, int64) { return l.ID, l.Seq }
func categoryIdent(c datatypes.Category) (string, int64) { return c.ID, c.Seq }
func topicIdent(t datatypes.Topic) (string, int64)       { return t.ID, t.Seq }
func articleIdent(a datatypes.Article) (string, int64)   { return a.ID, a.Seq }

// listAll returns every record under a prefix. Insertion order is not
// meaningful; callers needing sibling order sort by the order field.
func listAll[T any](s *Store, ctx context.Context, prefix string) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAllLocked[T](s, ctx, prefix)
}

// listAllLocked is listAll for callers already holding s.mu.
func listAllLocked[T any](s *Store, ctx context.Context, prefix string) ([]T, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []T{}
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   64,
			Prefix:         []byte(prefix),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec T
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("store: decode record %s: %w", it.Item().Key(), err)
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// findByKey locates the record a LookupKey denotes. Content keys go
// straight to the badger key; sequence aliases require a prefix scan.
func findByKey[T any](s *Store, ctx context.Context, prefix string, key LookupKey, id ident[T]) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByKeyLocked(s, ctx, prefix, key, id)
}

func findByKeyLocked[T any](s *Store, ctx context.Context, prefix string, key LookupKey, id ident[T]) (T, bool, error) {
	var zero T
	db, err := s.handle()
	if err != nil {
		return zero, false, err
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	if key.Kind == KindContent {
		var rec T
		err := db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(prefix + key.Hex))
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
		})
		if errors.Is(err, badger.ErrKeyNotFound) {
			return zero, false, nil
		}
		if err != nil {
			return zero, false, err
		}
		return rec, true, nil
	}

	// Legacy sequence alias: scan the collection.
	records, err := listAllLocked[T](s, ctx, prefix)
	if err != nil {
		return zero, false, err
	}
	for _, rec := range records {
		recID, recSeq := id(rec)
		if key.Matches(recID, recSeq) {
			return rec, true, nil
		}
	}
	return zero, false, nil
}

// createRecord assigns a fresh content id and persists the record.
// A pre-set legacy sequence alias is preserved (migration/seed path);
// the content id is always newly generated.
func createRecord[T any](s *Store, ctx context.Context, prefix string, rec T, setID func(*T, string)) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	db, err := s.handle()
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	err = db.Update(func(txn *badger.Txn) error {
		var newID string
		for {
			candidate := NewContentID()
			if _, err := txn.Get([]byte(prefix + candidate)); errors.Is(err, badger.ErrKeyNotFound) {
				setID(&rec, candidate)
				newID = candidate
				break
			} else if err != nil {
				return err
			}
			// Key already present: 8 random bytes collided, retry.
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("store: encode record: %w", err)
		}
		return txn.Set([]byte(prefix+newID), raw)
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// updateRecord merges a patch over the stored record. The id and the
// sequence alias are immutable: matching keys in the patch are dropped
// before the merge.
func updateRecord[T any](s *Store, ctx context.Context, prefix string, key LookupKey, patch map[string]any, id ident[T]) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	existing, found, err := findByKeyLocked(s, ctx, prefix, key, id)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, ErrNotFound
	}

	merged, err := mergePatch(existing, patch)
	if err != nil {
		return zero, err
	}

	db, err := s.handle()
	if err != nil {
		return zero, err
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return zero, fmt.Errorf("store: encode record: %w", err)
	}
	recID, _ := id(merged)
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefix+recID), raw)
	})
	if err != nil {
		return zero, err
	}
	return merged, nil
}

// mergePatch overlays patch fields onto the record's JSON form.
// The _id and seq fields are protected.
func mergePatch[T any](existing T, patch map[string]any) (T, error) {
	var zero T
	raw, err := json.Marshal(existing)
	if err != nil {
		return zero, fmt.Errorf("store: encode record: %w", err)
	}
	base := map[string]any{}
	if err := json.Unmarshal(raw, &base); err != nil {
		return zero, fmt.Errorf("store: decode record: %w", err)
	}
	for k, v := range patch {
		if k == "_id" || k == "seq" {
			continue
		}
		base[k] = v
	}
	mergedRaw, err := json.Marshal(base)
	if err != nil {
		return zero, fmt.Errorf("store: encode merged record: %w", err)
	}
	var merged T
	if err := json.Unmarshal(mergedRaw, &merged); err != nil {
		// A type error here means the patch carried a field the entity
		// schema cannot hold, which is the caller's mistake.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return zero, fmt.Errorf("%w: field %q expects %s", ErrInvalidPatch, typeErr.Field, typeErr.Type)
		}
		return zero, fmt.Errorf("store: decode merged record: %w", err)
	}
	return merged, nil
}

// deleteByKeyLocked removes the record a key denotes. Returns whether a
// record was actually removed. Callers must hold s.mu.
func deleteByKeyLocked[T any](s *Store, ctx context.Context, prefix string, key LookupKey, id ident[T]) (bool, error) {
	rec, found, err := findByKeyLocked(s, ctx, prefix, key, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	db, err := s.handle()
	if err != nil {
		return false, err
	}
	recID, _ := id(rec)
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefix + recID))
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// Languages
// =============================================================================

// GetLanguages returns all languages.
func (s *Store) GetLanguages(ctx context.Context) ([]datatypes.Language, error) {
	observability.RecordStoreOp("languages", "list")
	return listAll[datatypes.Language](s, ctx, prefixLanguage)
}

// GetLanguage returns a single language by either id representation.
func (s *Store) GetLanguage(ctx context.Context, id string) (datatypes.Language, error) {
	observability.RecordStoreOp("languages", "get")
	key, err := ResolveKey(id)
	if err != nil {
		return datatypes.Language{}, err
	}
	rec, found, err := findByKey(s, ctx, prefixLanguage, key, languageIdent)
	if err != nil {
		return datatypes.Language{}, err
	}
	if !found {
		return datatypes.Language{}, ErrNotFound
	}
	return rec, nil
}

// CreateLanguage persists a new language under a fresh content id.
func (s *Store) CreateLanguage(ctx context.Context, lang datatypes.Language) (datatypes.Language, error) {
	observability.RecordStoreOp("languages", "create")
	if lang.Category == nil {
		lang.Category = []string{}
	}
	return createRecord(s, ctx, prefixLanguage, lang, func(l *datatypes.Language, id string) { l.ID = id })
}

// UpdateLanguage merges a partial update over an existing language.
func (s *Store) UpdateLanguage(ctx context.Context, id string, patch map[string]any) (datatypes.Language, error) {
	observability.RecordStoreOp("languages", "update")
	key, err := ResolveKey(id)
	if err != nil {
		return datatypes.Language{}, err
	}
	return updateRecord(s, ctx, prefixLanguage, key, patch, languageIdent)
}

// =============================================================================
// Categories
// =============================================================================

// GetCategories returns all categories.
func (s *Store) GetCategories(ctx context.Context) ([]datatypes.Category, error) {
	observability.RecordStoreOp("categories", "list")
	return listAll[datatypes.Category](s, ctx, prefixCategory)
}

// GetCategory returns a single category by either id representation.
func (s *Store) GetCategory(ctx context.Context, id string) (datatypes.Category, error) {
	observability.RecordStoreOp("categories", "get")
	key, err := ResolveKey(id)
	if err != nil {
		return datatypes.Category{}, err
	}
	rec, found, err := findByKey(s, ctx, prefixCategory, key, categoryIdent)
	if err != nil {
		return datatypes.Category{}, err
	}
	if !found {
		return datatypes.Category{}, ErrNotFound
	}
	return rec, nil
}

// CreateCategory persists a new category under a fresh content id.
// The languageId reference is trusted; a dangling parent only means
// the category never shows up in child listings.
func (s *Store) CreateCategory(ctx context.Context, cat datatypes.Category) (datatypes.Category, error) {
	observability.RecordStoreOp("categories", "create")
	return createRecord(s, ctx, prefixCategory, cat, func(c *datatypes.Category, id string) { c.ID = id })
}

// UpdateCategory merges a partial update over an existing category.
func (s *Store) UpdateCategory(ctx context.Context, id string, patch map[string]any) (datatypes.Category, error) {
	observability.RecordStoreOp("categories", "update")
	key, err := ResolveKey(id)
	if err != nil {
		return datatypes.Category{}, err
	}
	return updateRecord(s, ctx, prefixCategory, key, patch, categoryIdent)
}

// =============================================================================
// Topics
// =============================================================================

// GetTopics returns all topics.
func (s *Store) GetTopics(ctx context.Context) ([]datatypes.Topic, error) {
	observability.RecordStoreOp("topics", "list")
	return listAll[datatypes.Topic](s, ctx, prefixTopic)
}

// GetTopic returns a single topic by either id representation.
func (s *Store) GetTopic(ctx context.Context, id string) (datatypes.Topic, error) {
	observability.RecordStoreOp("topics", "get")
	key, err := ResolveKey(id)
	if err != nil {
		return datatypes.Topic{}, err
	}
	rec, found, err := findByKey(s, ctx, prefixTopic, key, topicIdent)
	if err != nil {
		return datatypes.Topic{}, err
	}
	if !found {
		return datatypes.Topic{}, ErrNotFound
	}
	return rec, nil
}

// CreateTopic persists a new topic under a fresh content id.
func (s *Store) CreateTopic(ctx context.Context, topic datatypes.Topic) (datatypes.Topic, error) {
	observability.RecordStoreOp("topics", "create")
	return createRecord(s, ctx, prefixTopic, topic, func(t *datatypes.Topic, id string) { t.ID = id })
}

// UpdateTopic merges a partial update over an existing topic.
func (s *Store) UpdateTopic(ctx context.Context, id string, patch map[string]any) (datatypes.Topic, error) {
	observability.RecordStoreOp("topics", "update")
	key, err := ResolveKey(id)
	if err != nil {
		return datatypes.Topic{}, err
	}
	return updateRecord(s, ctx, prefixTopic, key, patch, topicIdent)
}

// =============================================================================
// Articles
// =============================================================================

// GetArticles returns all articles.
func (s *Store) GetArticles(ctx context.Context) ([]datatypes.Article, error) {
	observability.RecordStoreOp("articles", "list")
	return listAll[datatypes.Article](s, ctx, prefixArticle)
}

// GetArticle returns a single article by either id representation.
func (s *Store) GetArticle(ctx context.Context, id string) (datatypes.Article, error) {
	observability.RecordStoreOp("articles", "get")
	key, err := ResolveKey(id)
	if err != nil {
		return datatypes.Article{}, err
	}
	rec, found, err := findByKey(s, ctx, prefixArticle, key, articleIdent)
	if err != nil {
		return datatypes.Article{}, err
	}
	if !found {
		return datatypes.Article{}, ErrNotFound
	}
	return rec, nil
}

// CreateArticle persists a new article under a fresh content id.
// Embedded code examples travel with the article.
func (s *Store) CreateArticle(ctx context.Context, art datatypes.Article) (datatypes.Article, error) {
	observability.RecordStoreOp("articles", "create")
	return createRecord(s, ctx, prefixArticle, art, func(a *datatypes.Article, id string) { a.ID = id })
}

// UpdateArticle merges a partial update over an existing article.
func (s *Store) UpdateArticle(ctx context.Context, id string, patch map[string]any) (datatypes.Article, error) {
	observability.RecordStoreOp("articles", "update")
	key, err := ResolveKey(id)
	if err != nil {
		return datatypes.Article{}, err
	}
	return updateRecord(s, ctx, prefixArticle, key, patch, articleIdent)
}

// =============================================================================
// Admins
// =============================================================================

// GetAdmin returns an admin account by username.
func (s *Store) GetAdmin(ctx context.Context, username string) (datatypes.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.handle()
	if err != nil {
		return datatypes.Admin{}, err
	}
	if err := ctx.Err(); err != nil {
		return datatypes.Admin{}, err
	}

	var admin datatypes.Admin
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixAdmin + username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &admin)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return datatypes.Admin{}, ErrNotFound
	}
	if err != nil {
		return datatypes.Admin{}, err
	}
	return admin, nil
}

// PutAdmin creates or replaces an admin account.
func (s *Store) PutAdmin(ctx context.Context, admin datatypes.Admin) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.handle()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if admin.Username == "" {
		return errors.New("store: admin username is required")
	}

	raw, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("store: encode admin: %w", err)
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixAdmin+admin.Username), raw)
	})
}
