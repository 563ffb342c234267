// Package store persists term metadata.
//
// Backends implement the host-shaped key-value contract (Store). ColorMeta
// narrows it to the single fixed key this extension owns so callers never pass
// key strings around.
package store

import (
	"context"

	id "termcolor/pkg/domain"
)

// MetaKey names a metadata attribute of a term.
type MetaKey string

// KeyColor is the only key this extension reads or writes.
const KeyColor MetaKey = "color"

// Store is a term metadata key-value store. Get returns sentinel.ErrNotFound
// (possibly wrapped) when the term has no value for key. Update is an upsert.
// Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, termID id.TermID, key MetaKey) (string, error)
	Update(ctx context.Context, termID id.TermID, key MetaKey, value string) error
	Delete(ctx context.Context, termID id.TermID, key MetaKey) error
}

// BulkGetter is implemented by backends that can read many terms in one round
// trip. Missing terms are absent from the result.
type BulkGetter interface {
	GetMany(ctx context.Context, termIDs []id.TermID, key MetaKey) (map[id.TermID]string, error)
}
