package queue

import (
	"context"
	"fmt"

	"github.com/parkside/discscore/internal/gateway"
	"github.com/parkside/discscore/internal/model"
)

// apply performs one operation against the gateway. Errors mean "retain and
// retry later"; the caller decides what that implies.
func (q *Queue) apply(ctx context.Context, op PendingOp) error {
	switch op.Kind {
	case KindCreateCourse:
		course, err := decodePayload[model.Course](op)
		if err != nil {
			return err
		}
		_, err = q.gw.CreateRow(ctx, model.CollectionCourses, gateway.EncodeCourse(course))
		return err

	case KindCreateHoles:
		holes, err := decodePayload[[]model.Hole](op)
		if err != nil {
			return err
		}
		for _, h := range holes {
			if _, err := q.gw.CreateRow(ctx, model.CollectionHoles, gateway.EncodeHole(h)); err != nil {
				// Partial batches replay whole; duplicates are the
				// gateway's idempotent-append problem.
				return err
			}
		}
		return nil

	case KindCreateRound:
		round, err := decodePayload[model.Round](op)
		if err != nil {
			return err
		}
		_, err = q.gw.CreateRow(ctx, model.CollectionRounds, gateway.EncodeRound(round))
		return err

	case KindUpdateRound:
		round, err := decodePayload[model.Round](op)
		if err != nil {
			return err
		}
		return q.updateByID(ctx, model.CollectionRounds, round.ID, gateway.EncodeRound(round))

	case KindCreateScores:
		scores, err := decodePayload[[]model.Score](op)
		if err != nil {
			return err
		}
		for _, sc := range scores {
			if _, err := q.gw.CreateRow(ctx, model.CollectionScores, gateway.EncodeScore(sc)); err != nil {
				return err
			}
		}
		return nil

	case KindUpdateCourseLastPlayed:
		course, err := decodePayload[model.Course](op)
		if err != nil {
			return err
		}
		return q.updateByID(ctx, model.CollectionCourses, course.ID, gateway.EncodeCourse(course))
	}
	return fmt.Errorf("unknown operation kind %q", op.Kind)
}

// updateByID locates the remote row for an entity and rewrites it. A row
// that is not remote yet is an error so the op is retained; FIFO order means
// the corresponding create replays first on the next drain.
func (q *Queue) updateByID(ctx context.Context, collection, id string, fields gateway.Row) error {
	idx, err := gateway.FindRowByID(ctx, q.gw, collection, id)
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("%s row %s not found remotely", collection, id)
	}
	return q.gw.UpdateRow(ctx, collection, idx, fields)
}

// EnsureRemote creates any missing remote collections. Called before a
// drain against a fresh remote store; a failure here is a sync failure like
// any other and leaves the queue untouched.
func (q *Queue) EnsureRemote(ctx context.Context) error {
	existing, err := q.gw.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list remote collections: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}
	for _, name := range []string{
		model.CollectionCourses,
		model.CollectionHoles,
		model.CollectionRounds,
		model.CollectionScores,
	} {
		if present[name] {
			continue
		}
		if err := q.gw.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("create remote collection %s: %w", name, err)
		}
	}
	return nil
}
