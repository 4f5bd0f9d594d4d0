// Package docstore persists whole JSON documents in the platform settings
// table under optimistic concurrency
//
// A save names the updated_at it read; if another writer got there first the
// save matches no row and fails with a conflict instead of overwriting
package docstore

import (
	"context"
	"encoding/json"
	"time"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/metrics"
)

// Document is one settings row
type Document struct {
	ID        string
	Value     json.RawMessage
	UpdatedAt time.Time
	// Exists is false for a document that has never been saved
	Exists bool
}

// Store loads and conditionally saves documents
type Store interface {
	// Load returns the document, or a zero Document with Exists=false when absent
	Load(ctx context.Context, id string) (Document, error)
	// Save writes value if the stored row still matches prev and returns the new version
	Save(ctx context.Context, prev Document, value json.RawMessage) (Document, error)
}

// ErrConflict is returned when a save lost an optimistic concurrency race
var ErrConflict = perr.New(perr.ErrorCodeConflict, "document was modified concurrently")

func conflict(id string) error {
	metrics.DocstoreConflicts.WithLabelValues(id).Inc()
	return perr.WithOp(ErrConflict, "docstore.save:"+id)
}

// nextVersion returns a timestamp strictly after prev at the microsecond
// resolution Postgres stores
func nextVersion(now, prev time.Time) time.Time {
	v := now.UTC().Truncate(time.Microsecond)
	if !prev.IsZero() && !v.After(prev) {
		v = prev.Add(time.Microsecond)
	}
	return v
}

// LoadJSON loads id and decodes it into T; an absent document decodes to the zero T
func LoadJSON[T any](ctx context.Context, s Store, id string) (T, Document, error) {
	var v T
	doc, err := s.Load(ctx, id)
	if err != nil {
		return v, doc, err
	}
	if !doc.Exists || len(doc.Value) == 0 {
		return v, doc, nil
	}
	if err := json.Unmarshal(doc.Value, &v); err != nil {
		return v, doc, perr.Wrapf(err, perr.ErrorCodeJSON, "decode document %s", id)
	}
	return v, doc, nil
}

// SaveJSON encodes v and saves it over prev
func SaveJSON[T any](ctx context.Context, s Store, prev Document, v T) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return prev, perr.Wrapf(err, perr.ErrorCodeJSON, "encode document %s", prev.ID)
	}
	return s.Save(ctx, prev, raw)
}

// IsConflict reports whether err is a lost optimistic concurrency race
func IsConflict(err error) bool { return perr.IsCode(err, perr.ErrorCodeConflict) }
