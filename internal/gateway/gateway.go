// Package gateway defines the narrow contract between the scoring core and
// the remote datastore, plus the string codec the contract implies.
//
// The gateway transmits flat rows of string-keyed string fields. Encoding
// rules: booleans serialize as the literal tokens "TRUE"/"FALSE", absent or
// null values as the empty string, numbers as base-10 text. The codec in
// this package keeps that string typing at the boundary; the data model
// stays properly typed.
//
// Implementations live outside the core and own their own timeout and
// authentication behavior. The core treats any returned error identically:
// the mutation is retained in the operation queue for a later replay.
// Implementations are expected to tolerate replays of writes that already
// landed (idempotent-append semantics); the queue guarantees at-least-once,
// not exactly-once.
package gateway

import "context"

// Row is one flat remote record.
type Row map[string]string

// Gateway is the remote datastore contract.
type Gateway interface {
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string) error
	GetRows(ctx context.Context, name string) ([]Row, error)
	// CreateRow appends a row and returns its index within the collection.
	CreateRow(ctx context.Context, name string, fields Row) (int, error)
	UpdateRow(ctx context.Context, name string, rowIndex int, fields Row) error
	DeleteRow(ctx context.Context, name string, rowIndex int) error
	HealthCheck(ctx context.Context) error
}

// FindRowByID scans a collection for the row whose "id" field matches.
// Returns the row index or -1. Gateways expose rows by position, so updates
// locate their target this way.
func FindRowByID(ctx context.Context, g Gateway, collection, id string) (int, error) {
	rows, err := g.GetRows(ctx, collection)
	if err != nil {
		return -1, err
	}
	for i, row := range rows {
		if row["id"] == id {
			return i, nil
		}
	}
	return -1, nil
}
