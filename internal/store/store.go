package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/parkside/discscore/internal/model"
)

// Store is the record store contract shared by both backends.
//
// Reads never fail: a backend that cannot satisfy a read returns an empty
// result (and logs the cause). Writes return errors because losing a local
// write is the one thing this layer must never do silently.
type Store interface {
	// GetAll returns every document in the collection. Empty, never nil,
	// if the collection is absent.
	GetAll(ctx context.Context, collection string) []json.RawMessage

	// GetByID returns the document with the given id, or false.
	GetByID(ctx context.Context, collection, id string) (json.RawMessage, bool)

	// GetByField returns documents whose top-level field equals value.
	// Used for "all holes of a course" and "all scores of a round".
	GetByField(ctx context.Context, collection, field, value string) []json.RawMessage

	// Put upserts one record, keyed by its RecordID. Idempotent.
	Put(ctx context.Context, collection string, rec model.Record) error

	// PutMany upserts each record. On the file backend this replaces the
	// entire collection: the fallback path treats the batch as the
	// authoritative full set. Callers relying on partial batches must use
	// Put in a loop.
	PutMany(ctx context.Context, collection string, recs []model.Record) error

	// Remove deletes the document with the given id. Removing an absent
	// id is not an error.
	Remove(ctx context.Context, collection, id string) error

	// Clear deletes every document in the collection.
	Clear(ctx context.Context, collection string) error

	// Name identifies the active backend ("sqlite" or "file"), for logs
	// and status output only.
	Name() string

	Close() error
}

// marshalRecord encodes a record and validates its identifier.
func marshalRecord(rec model.Record) (id string, data []byte, err error) {
	id = rec.RecordID()
	if id == "" {
		return "", nil, fmt.Errorf("record has empty id")
	}
	data, err = json.Marshal(rec)
	if err != nil {
		return "", nil, fmt.Errorf("marshal record %s: %w", id, err)
	}
	return id, data, nil
}

// docID extracts the "id" field from a stored document.
func docID(doc json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return ""
	}
	return probe.ID
}

// All decodes every document in a collection into T. Documents that fail to
// decode are skipped with a warning rather than poisoning the whole read.
func All[T any](ctx context.Context, s Store, collection string) []T {
	return decodeDocs[T](collection, s.GetAll(ctx, collection))
}

// ByField decodes the documents matching an equality filter into T.
func ByField[T any](ctx context.Context, s Store, collection, field, value string) []T {
	return decodeDocs[T](collection, s.GetByField(ctx, collection, field, value))
}

// Get decodes a single document by id.
func Get[T any](ctx context.Context, s Store, collection, id string) (T, bool) {
	var out T
	doc, ok := s.GetByID(ctx, collection, id)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(doc, &out); err != nil {
		slog.Warn("skipping undecodable record", "collection", collection, "id", id, "error", err)
		return out, false
	}
	return out, true
}

// PutAll upserts a typed slice via PutMany.
func PutAll[T model.Record](ctx context.Context, s Store, collection string, recs []T) error {
	out := make([]model.Record, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return s.PutMany(ctx, collection, out)
}

func decodeDocs[T any](collection string, docs []json.RawMessage) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			slog.Warn("skipping undecodable record", "collection", collection, "id", docID(doc), "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}
