// Package storage holds the PostgreSQL persistence layer. Every
// method maps to a single statement; callers are responsible for
// any higher-level authorization or merge semantics.
package storage

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already taken")
)
