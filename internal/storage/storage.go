// Package storage holds what the PostgreSQL and Redis backends share.
package storage

import "errors"

// ErrCharacterNotFound is returned by a blob store when no blob exists for the
// requested character id.
var ErrCharacterNotFound = errors.New("character not found")
