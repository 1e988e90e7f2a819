// Package queue is the pending-operation outbox: an ordered, durable log of
// remote mutations that have not been acknowledged yet.
//
// Local writes always succeed first; the remote write is attempted through
// Dispatch and, on any gateway failure, parked here for the next Drain.
// Delivery is at-least-once in FIFO order. The queue never deduplicates;
// replay tolerance belongs to the gateway's idempotent-append semantics.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/parkside/discscore/internal/gateway"
	"github.com/parkside/discscore/internal/model"
	"github.com/parkside/discscore/internal/store"
)

// ErrDrainInProgress reports an overlapping Drain call. Drains must not
// overlap: ops are only removed after a pass completes, so two concurrent
// passes would double-apply everything still in flight.
var ErrDrainInProgress = errors.New("drain already in progress")

// Queue is the operation outbox. Safe for use from one goroutine at a time
// except Drain, which additionally guards itself against overlap.
type Queue struct {
	store    store.Store
	gw       gateway.Gateway
	ids      model.IDGenerator
	now      func() time.Time
	draining atomic.Bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithNow overrides the enqueue timestamp source. Tests use this to get
// deterministic ordering and stored snapshots.
func WithNow(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates a queue backed by the record store's pendingOperations
// collection and draining into gw.
func New(s store.Store, gw gateway.Gateway, ids model.IDGenerator, opts ...Option) *Queue {
	q := &Queue{store: s, gw: gw, ids: ids, now: time.Now}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends a mutation with the given payload snapshot. The write
// goes through the record store, so a queued op survives restarts.
func (q *Queue) Enqueue(ctx context.Context, kind Kind, payload any) (PendingOp, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return PendingOp{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	op := PendingOp{
		ID:         q.ids.NewID(),
		Kind:       kind,
		Payload:    data,
		EnqueuedAt: q.now(),
	}
	if err := q.store.Put(ctx, model.CollectionPendingOps, op); err != nil {
		return PendingOp{}, fmt.Errorf("enqueue %s: %w", kind, err)
	}
	slog.Info("operation queued", "kind", kind, "op", op.ID)
	return op, nil
}

// List returns the queued operations in enqueue order.
func (q *Queue) List(ctx context.Context) []PendingOp {
	ops := store.All[PendingOp](ctx, q.store, model.CollectionPendingOps)
	sort.Slice(ops, func(i, j int) bool {
		if !ops[i].EnqueuedAt.Equal(ops[j].EnqueuedAt) {
			return ops[i].EnqueuedAt.Before(ops[j].EnqueuedAt)
		}
		return ops[i].ID < ops[j].ID
	})
	return ops
}

// Pending returns the number of queued operations.
func (q *Queue) Pending(ctx context.Context) int {
	return len(q.List(ctx))
}

// Clear discards every queued operation. Destructive; callers own the
// confirmation.
func (q *Queue) Clear(ctx context.Context) error {
	return q.store.Clear(ctx, model.CollectionPendingOps)
}

// Drain replays queued operations against the gateway in enqueue order.
// Successful ops are removed; failed ops are retained in their original
// relative order for the next pass; a failure never stops later ops from
// being attempted. Returns true only if every operation succeeded (an empty
// queue drains to true).
func (q *Queue) Drain(ctx context.Context) (bool, error) {
	if !q.draining.CompareAndSwap(false, true) {
		return false, ErrDrainInProgress
	}
	defer q.draining.Store(false)

	ops := q.List(ctx)
	if len(ops) == 0 {
		return true, nil
	}

	applied, retained := 0, 0
	for _, op := range ops {
		if err := q.apply(ctx, op); err != nil {
			retained++
			slog.Warn("operation retained for next drain", "kind", op.Kind, "op", op.ID, "error", err)
			continue
		}
		if err := q.store.Remove(ctx, model.CollectionPendingOps, op.ID); err != nil {
			// The remote write landed but the op could not be removed;
			// the replay on the next pass relies on gateway idempotency.
			retained++
			slog.Warn("applied operation could not be removed", "op", op.ID, "error", err)
			continue
		}
		applied++
	}

	slog.Info("drain complete", "applied", applied, "retained", retained)
	return retained == 0, nil
}

// Dispatch attempts the mutation directly against the gateway and, on any
// gateway failure, parks it in the queue instead. Sync failures never block
// local progress: the returned error is non-nil only when the local enqueue
// itself failed.
func (q *Queue) Dispatch(ctx context.Context, kind Kind, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	op := PendingOp{Kind: kind, Payload: data}
	if err := q.apply(ctx, op); err != nil {
		slog.Warn("remote write failed, queueing for later", "kind", kind, "error", err)
		if _, qerr := q.Enqueue(ctx, kind, payload); qerr != nil {
			return qerr
		}
	}
	return nil
}
