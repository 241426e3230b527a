// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// contentIDLen is the length of a content key in hex characters.
// Matches the 12-byte object ids the catalog has carried since the
// original Mongo-backed deployment.
const contentIDLen = 24

// KeyKind tags which identifier representation a LookupKey holds.
type KeyKind int

const (
	// KindContent is a store-generated 24-character hex content key.
	KindContent KeyKind = iota

	// KindSeq is a legacy integer sequence id. Records created under
	// earlier schema revisions keep their number as an alias.
	KindSeq
)

// LookupKey is the normalized form of a caller-supplied identifier.
//
// Callers receive identifiers as opaque strings that may be either a
// content key or a legacy sequence number depending on when the record
// was created. ResolveKey produces a tagged key so the store always
// compares against the correct field and never compares raw strings
// across the two representations.
type LookupKey struct {
	Kind KeyKind

	// Hex is the lowercased content key. Set when Kind == KindContent.
	Hex string

	// Seq is the sequence number. Set when Kind == KindSeq.
	Seq int64
}

// ResolveKey normalizes a caller-supplied identifier.
//
// Description:
//
//	Attempts to parse the input as a 24-character hex content key first,
//	then as a base-10 sequence number. Pure function, no store access.
//
// Outputs:
//
//	LookupKey - Tagged key ready for store lookups.
//	error - ErrInvalidIdentifier if neither representation parses.
func ResolveKey(input string) (LookupKey, error) {
	if isContentID(input) {
		return LookupKey{Kind: KindContent, Hex: lowerHex(input)}, nil
	}
	if n, err := strconv.ParseInt(input, 10, 64); err == nil && n > 0 {
		return LookupKey{Kind: KindSeq, Seq: n}, nil
	}
	return LookupKey{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, input)
}

// Matches reports whether a record with the given content id and
// sequence alias is the one this key denotes. A zero seq means the
// record has no legacy alias.
func (k LookupKey) Matches(id string, seq int64) bool {
	switch k.Kind {
	case KindContent:
		return k.Hex == id
	case KindSeq:
		return seq != 0 && k.Seq == seq
	}
	return false
}

// String returns the identifier in its external form.
func (k LookupKey) String() string {
	if k.Kind == KindSeq {
		return strconv.FormatInt(k.Seq, 10)
	}
	return k.Hex
}

// NewContentID generates a fresh content key: a 4-byte big-endian unix
// timestamp followed by 8 random bytes, hex encoded. The timestamp
// prefix keeps keys roughly creation-ordered in prefix scans.
func NewContentID() string {
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(raw[4:]); err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic(fmt.Sprintf("store: read random bytes: %v", err))
	}
	return hex.EncodeToString(raw[:])
}

func isContentID(s string) bool {
	if len(s) != contentIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func lowerHex(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'F' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
