package model

import "time"

// Collection names used by the record store. The remote gateway mirrors these
// names one-to-one, except pendingOperations which never leaves the device.
const (
	CollectionCourses    = "courses"
	CollectionHoles      = "holes"
	CollectionRounds     = "rounds"
	CollectionScores     = "scores"
	CollectionPendingOps = "pendingOperations"
)

// Record is anything the record store can persist. The ID must be stable,
// unique within its collection, and generated client-side.
type Record interface {
	RecordID() string
}

// Course is a named layout of holes. HoleCount is fixed at creation;
// LastPlayed is nil until the first round on the course completes.
type Course struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	HoleCount  int        `json:"hole_count"`
	CreatedAt  time.Time  `json:"created_at"`
	LastPlayed *time.Time `json:"last_played,omitempty"`
}

func (c Course) RecordID() string { return c.ID }

// Hole is one segment of a course. SequenceNumber runs 1..HoleCount and is
// unique per course; a fully defined course has a contiguous range.
type Hole struct {
	ID             string `json:"id"`
	CourseID       string `json:"course_id"`
	SequenceNumber int    `json:"sequence_number"`
	Par            int    `json:"par"`
	Distance       *int   `json:"distance,omitempty"`
}

func (h Hole) RecordID() string { return h.ID }

// Round is one full playing of a course. TotalThrows and TotalPar stay nil
// until the round completes, after which the round is immutable.
type Round struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	StartedAt   time.Time `json:"started_at"`
	Completed   bool      `json:"completed"`
	TotalThrows *int      `json:"total_throws,omitempty"`
	TotalPar    *int      `json:"total_par,omitempty"`
	// CurrentIndex is the active hole position of an in-progress round,
	// persisted so an interrupted session resumes where it left off.
	// Local-only: never transmitted to the remote store.
	CurrentIndex int `json:"current_index,omitempty"`
}

func (r Round) RecordID() string { return r.ID }

// Score records the performance on one hole within one round. Throws is
// required; Approaches and Putts are optional sub-values. SequenceNumber is
// denormalized from the hole so scores order without a join.
type Score struct {
	ID             string    `json:"id"`
	RoundID        string    `json:"round_id"`
	HoleID         string    `json:"hole_id"`
	SequenceNumber int       `json:"sequence_number"`
	Throws         int       `json:"throws"`
	Approaches     *int      `json:"approaches,omitempty"`
	Putts          *int      `json:"putts,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

func (s Score) RecordID() string { return s.ID }

// IntPtr returns a pointer to v. Convenience for optional fields.
func IntPtr(v int) *int { return &v }
