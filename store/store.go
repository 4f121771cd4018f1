// Package store holds the MongoDB-backed repositories. Controllers depend
// on the interfaces they declare themselves, so these types stay concrete.
package store

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already in use")
)
