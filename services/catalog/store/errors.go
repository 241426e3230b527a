// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import "errors"

var (
	// ErrInvalidIdentifier indicates a caller-supplied id string that is
	// neither a content key nor a sequence number.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNotFound indicates the target record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidPatch indicates a partial update whose field values do
	// not fit the entity schema (wrong JSON type). Caller input, not a
	// backing store failure.
	ErrInvalidPatch = errors.New("invalid patch")

	// ErrNotInitialized indicates an operation was attempted before Open.
	// This is a startup defect: the process must not serve requests
	// against an unopened store.
	ErrNotInitialized = errors.New("store not initialized")
)
