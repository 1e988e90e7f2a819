package gateway

import (
	"fmt"
	"strconv"
	"time"

	"github.com/parkside/discscore/internal/model"
)

// Wire tokens for booleans. These are the literal cell values the remote
// store expects, not a formatting choice.
const (
	tokenTrue  = "TRUE"
	tokenFalse = "FALSE"
)

func encodeBool(v bool) string {
	if v {
		return tokenTrue
	}
	return tokenFalse
}

func decodeBool(s string) (bool, error) {
	switch s {
	case tokenTrue:
		return true, nil
	case tokenFalse:
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean token %q", s)
}

func encodeOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func decodeOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func encodeOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func decodeOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeInt(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", field, err)
	}
	return n, nil
}

func decodeTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %s: %w", field, err)
	}
	return t, nil
}

// EncodeCourse flattens a course for the wire.
func EncodeCourse(c model.Course) Row {
	return Row{
		"id":          c.ID,
		"name":        c.Name,
		"hole_count":  strconv.Itoa(c.HoleCount),
		"created_at":  c.CreatedAt.UTC().Format(time.RFC3339),
		"last_played": encodeOptionalTime(c.LastPlayed),
	}
}

// DecodeCourse parses a wire row back into a course.
func DecodeCourse(r Row) (model.Course, error) {
	holeCount, err := decodeInt("hole_count", r["hole_count"])
	if err != nil {
		return model.Course{}, err
	}
	createdAt, err := decodeTime("created_at", r["created_at"])
	if err != nil {
		return model.Course{}, err
	}
	lastPlayed, err := decodeOptionalTime(r["last_played"])
	if err != nil {
		return model.Course{}, fmt.Errorf("field last_played: %w", err)
	}
	return model.Course{
		ID:         r["id"],
		Name:       r["name"],
		HoleCount:  holeCount,
		CreatedAt:  createdAt,
		LastPlayed: lastPlayed,
	}, nil
}

// EncodeHole flattens a hole for the wire.
func EncodeHole(h model.Hole) Row {
	return Row{
		"id":              h.ID,
		"course_id":       h.CourseID,
		"sequence_number": strconv.Itoa(h.SequenceNumber),
		"par":             strconv.Itoa(h.Par),
		"distance":        encodeOptionalInt(h.Distance),
	}
}

// DecodeHole parses a wire row back into a hole.
func DecodeHole(r Row) (model.Hole, error) {
	seq, err := decodeInt("sequence_number", r["sequence_number"])
	if err != nil {
		return model.Hole{}, err
	}
	par, err := decodeInt("par", r["par"])
	if err != nil {
		return model.Hole{}, err
	}
	distance, err := decodeOptionalInt(r["distance"])
	if err != nil {
		return model.Hole{}, fmt.Errorf("field distance: %w", err)
	}
	return model.Hole{
		ID:             r["id"],
		CourseID:       r["course_id"],
		SequenceNumber: seq,
		Par:            par,
		Distance:       distance,
	}, nil
}

// EncodeRound flattens a round for the wire.
func EncodeRound(rd model.Round) Row {
	return Row{
		"id":           rd.ID,
		"course_id":    rd.CourseID,
		"started_at":   rd.StartedAt.UTC().Format(time.RFC3339),
		"completed":    encodeBool(rd.Completed),
		"total_throws": encodeOptionalInt(rd.TotalThrows),
		"total_par":    encodeOptionalInt(rd.TotalPar),
	}
}

// DecodeRound parses a wire row back into a round.
func DecodeRound(r Row) (model.Round, error) {
	startedAt, err := decodeTime("started_at", r["started_at"])
	if err != nil {
		return model.Round{}, err
	}
	completed, err := decodeBool(r["completed"])
	if err != nil {
		return model.Round{}, fmt.Errorf("field completed: %w", err)
	}
	totalThrows, err := decodeOptionalInt(r["total_throws"])
	if err != nil {
		return model.Round{}, fmt.Errorf("field total_throws: %w", err)
	}
	totalPar, err := decodeOptionalInt(r["total_par"])
	if err != nil {
		return model.Round{}, fmt.Errorf("field total_par: %w", err)
	}
	return model.Round{
		ID:          r["id"],
		CourseID:    r["course_id"],
		StartedAt:   startedAt,
		Completed:   completed,
		TotalThrows: totalThrows,
		TotalPar:    totalPar,
	}, nil
}

// EncodeScore flattens a score for the wire.
func EncodeScore(sc model.Score) Row {
	return Row{
		"id":              sc.ID,
		"round_id":        sc.RoundID,
		"hole_id":         sc.HoleID,
		"sequence_number": strconv.Itoa(sc.SequenceNumber),
		"throws":          strconv.Itoa(sc.Throws),
		"approaches":      encodeOptionalInt(sc.Approaches),
		"putts":           encodeOptionalInt(sc.Putts),
		"recorded_at":     sc.RecordedAt.UTC().Format(time.RFC3339),
	}
}

// DecodeScore parses a wire row back into a score.
func DecodeScore(r Row) (model.Score, error) {
	seq, err := decodeInt("sequence_number", r["sequence_number"])
	if err != nil {
		return model.Score{}, err
	}
	throws, err := decodeInt("throws", r["throws"])
	if err != nil {
		return model.Score{}, err
	}
	approaches, err := decodeOptionalInt(r["approaches"])
	if err != nil {
		return model.Score{}, fmt.Errorf("field approaches: %w", err)
	}
	putts, err := decodeOptionalInt(r["putts"])
	if err != nil {
		return model.Score{}, fmt.Errorf("field putts: %w", err)
	}
	recordedAt, err := decodeTime("recorded_at", r["recorded_at"])
	if err != nil {
		return model.Score{}, err
	}
	return model.Score{
		ID:             r["id"],
		RoundID:        r["round_id"],
		HoleID:         r["hole_id"],
		SequenceNumber: seq,
		Throws:         throws,
		Approaches:     approaches,
		Putts:          putts,
		RecordedAt:     recordedAt,
	}, nil
}
