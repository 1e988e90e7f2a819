package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/parkside/discscore/internal/model"
)

// FileStore is the flat fallback backend: one JSON array file per collection
// under a data directory. Field lookups are linear scans, which is fine at
// the scale of one player's score history.
//
// Writes go through a temp file and rename so a crash mid-write never
// truncates a collection.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// OpenFile creates the data directory if needed and returns a FileStore.
func OpenFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) Close() error { return nil }

func (f *FileStore) GetAll(ctx context.Context, collection string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(collection)
}

func (f *FileStore) GetByID(ctx context.Context, collection, id string) (json.RawMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.load(collection) {
		if docID(doc) == id {
			return doc, true
		}
	}
	return nil, false
}

func (f *FileStore) GetByField(ctx context.Context, collection, field, value string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []json.RawMessage{}
	for _, doc := range f.load(collection) {
		var fields map[string]any
		if err := json.Unmarshal(doc, &fields); err != nil {
			slog.Warn("skipping undecodable record", "collection", collection, "error", err)
			continue
		}
		if s, ok := fields[field].(string); ok && s == value {
			matched = append(matched, doc)
		}
	}
	return matched
}

func (f *FileStore) Put(ctx context.Context, collection string, rec model.Record) error {
	id, data, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	docs := f.load(collection)
	replaced := false
	for i, doc := range docs {
		if docID(doc) == id {
			docs[i] = data
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, data)
	}
	return f.save(collection, docs)
}

// PutMany replaces the entire collection with the given records. The flat
// backend has no per-record durable index, so the batch is treated as the
// authoritative full set.
func (f *FileStore) PutMany(ctx context.Context, collection string, recs []model.Record) error {
	docs := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		_, data, err := marshalRecord(rec)
		if err != nil {
			return err
		}
		docs = append(docs, data)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(collection, docs)
}

func (f *FileStore) Remove(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs := f.load(collection)
	kept := docs[:0]
	for _, doc := range docs {
		if docID(doc) != id {
			kept = append(kept, doc)
		}
	}
	if len(kept) == len(docs) {
		return nil
	}
	return f.save(collection, kept)
}

func (f *FileStore) Clear(ctx context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(collection, []json.RawMessage{})
}

func (f *FileStore) path(collection string) string {
	return filepath.Join(f.dir, collection+".json")
}

// load reads a collection file. Absent or corrupt files read as empty; the
// caller always gets a usable (possibly empty) slice.
func (f *FileStore) load(collection string) []json.RawMessage {
	data, err := os.ReadFile(f.path(collection))
	if os.IsNotExist(err) {
		return []json.RawMessage{}
	}
	if err != nil {
		slog.Warn("file read failed", "collection", collection, "error", err)
		return []json.RawMessage{}
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		slog.Warn("collection file corrupt, reading as empty", "collection", collection, "error", err)
		return []json.RawMessage{}
	}
	return docs
}

func (f *FileStore) save(collection string, docs []json.RawMessage) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", collection, err)
	}
	tmp := f.path(collection) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp, f.path(collection)); err != nil {
		return fmt.Errorf("replace collection %s: %w", collection, err)
	}
	return nil
}
