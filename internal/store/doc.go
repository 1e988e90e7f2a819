// Package store provides durable keyed storage for the scoring data model.
//
// Records are stored as JSON documents in named collections (courses, holes,
// rounds, scores, pendingOperations), each keyed by the document's "id"
// field. Two backends satisfy the same contract:
//
//   - SQLiteStore: the indexed backend. One table of documents with native
//     secondary-field lookups via json_extract. Preferred when available.
//   - FileStore: the flat fallback. One JSON file per collection, field
//     lookups by linear scan. Always available as long as the data
//     directory is writable.
//
// Open selects a backend once at startup and the choice is fixed for the
// process lifetime; callers never branch on which one is active.
//
// Failure semantics: read failures degrade to empty results, because this
// store backs an offline-tolerant application and "no data" is always a safe
// answer. Write failures are returned to the caller, who decides
// whether they are consequential.
package store
