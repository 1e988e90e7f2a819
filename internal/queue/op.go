package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies a pending remote mutation. The set is closed: the drain
// pass refuses kinds it does not recognize instead of guessing.
type Kind string

const (
	KindCreateCourse           Kind = "create-course"
	KindCreateHoles            Kind = "create-holes"
	KindCreateRound            Kind = "create-round"
	KindUpdateRound            Kind = "update-round"
	KindCreateScores           Kind = "create-scores"
	KindUpdateCourseLastPlayed Kind = "update-course-last-played"
)

// PendingOp is one not-yet-acknowledged remote mutation. Payload is the
// entity snapshot taken at enqueue time; ops are never mutated in place and
// are removed only after a confirmed successful replay.
type PendingOp struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// RecordID implements model.Record.
func (op PendingOp) RecordID() string { return op.ID }

func decodePayload[T any](op PendingOp) (T, error) {
	var v T
	if err := json.Unmarshal(op.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", op.Kind, err)
	}
	return v, nil
}
