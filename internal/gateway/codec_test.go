package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkside/discscore/internal/model"
)

func TestEncodeRound_BooleanTokens(t *testing.T) {
	rd := model.Round{
		ID:        "r1",
		CourseID:  "c1",
		StartedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}

	row := EncodeRound(rd)
	assert.Equal(t, "FALSE", row["completed"])

	rd.Completed = true
	assert.Equal(t, "TRUE", EncodeRound(rd)["completed"])
}

func TestDecodeRound_RejectsLooseBooleans(t *testing.T) {
	row := Row{
		"id":         "r1",
		"course_id":  "c1",
		"started_at": "2026-01-10T09:00:00Z",
	}

	// Only the exact uppercase tokens are valid on the wire.
	for _, bad := range []string{"true", "false", "True", "1", "yes", ""} {
		row["completed"] = bad
		_, err := DecodeRound(row)
		assert.Error(t, err, "completed=%q should not decode", bad)
	}

	row["completed"] = "TRUE"
	rd, err := DecodeRound(row)
	require.NoError(t, err)
	assert.True(t, rd.Completed)
}

func TestRound_OptionalTotals(t *testing.T) {
	// An in-progress round has no totals; they travel as empty cells.
	rd := model.Round{
		ID:        "r1",
		CourseID:  "c1",
		StartedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	row := EncodeRound(rd)
	assert.Equal(t, "", row["total_throws"])
	assert.Equal(t, "", row["total_par"])

	got, err := DecodeRound(row)
	require.NoError(t, err)
	assert.Nil(t, got.TotalThrows)
	assert.Nil(t, got.TotalPar)

	rd.Completed = true
	rd.TotalThrows = model.IntPtr(27)
	rd.TotalPar = model.IntPtr(28)
	got, err = DecodeRound(EncodeRound(rd))
	require.NoError(t, err)
	require.NotNil(t, got.TotalThrows)
	assert.Equal(t, 27, *got.TotalThrows)
	require.NotNil(t, got.TotalPar)
	assert.Equal(t, 28, *got.TotalPar)
}

func TestRound_LocalFieldsStayLocal(t *testing.T) {
	rd := model.Round{
		ID:           "r1",
		CourseID:     "c1",
		StartedAt:    time.Now(),
		CurrentIndex: 7,
	}
	row := EncodeRound(rd)
	_, present := row["current_index"]
	assert.False(t, present, "resume position must never reach the wire")
}

func TestCourse_RoundTrip(t *testing.T) {
	played := time.Date(2026, 1, 12, 15, 30, 0, 0, time.UTC)
	c := model.Course{
		ID:         "c1",
		Name:       "Pine Valley",
		HoleCount:  18,
		CreatedAt:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		LastPlayed: &played,
	}

	row := EncodeCourse(c)
	assert.Equal(t, "18", row["hole_count"])
	assert.Equal(t, "2026-01-12T15:30:00Z", row["last_played"])

	got, err := DecodeCourse(row)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestCourse_NeverPlayed(t *testing.T) {
	c := model.Course{
		ID:        "c1",
		Name:      "Fresh",
		HoleCount: 9,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	got, err := DecodeCourse(EncodeCourse(c))
	require.NoError(t, err)
	assert.Nil(t, got.LastPlayed)
}

func TestScore_RoundTrip(t *testing.T) {
	sc := model.Score{
		ID:             "s1",
		RoundID:        "r1",
		HoleID:         "h1",
		SequenceNumber: 3,
		Throws:         4,
		Approaches:     model.IntPtr(2),
		Putts:          model.IntPtr(1),
		RecordedAt:     time.Date(2026, 1, 10, 9, 5, 0, 0, time.UTC),
	}
	got, err := DecodeScore(EncodeScore(sc))
	require.NoError(t, err)
	assert.Equal(t, sc, got)

	// Quick-entry scores have no sub-values.
	sc.Approaches = nil
	sc.Putts = nil
	row := EncodeScore(sc)
	assert.Equal(t, "", row["approaches"])
	assert.Equal(t, "", row["putts"])
	got, err = DecodeScore(row)
	require.NoError(t, err)
	assert.Nil(t, got.Approaches)
	assert.Nil(t, got.Putts)
}

func TestHole_RoundTrip(t *testing.T) {
	h := model.Hole{
		ID:             "h1",
		CourseID:       "c1",
		SequenceNumber: 1,
		Par:            3,
		Distance:       model.IntPtr(85),
	}
	got, err := DecodeHole(EncodeHole(h))
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecode_MalformedCells(t *testing.T) {
	_, err := DecodeCourse(Row{"id": "c1", "name": "x", "hole_count": "nine", "created_at": "2026-01-01T00:00:00Z"})
	assert.ErrorContains(t, err, "hole_count")

	_, err = DecodeCourse(Row{"id": "c1", "name": "x", "hole_count": "9", "created_at": "yesterday"})
	assert.ErrorContains(t, err, "created_at")

	_, err = DecodeScore(Row{
		"id": "s1", "round_id": "r1", "hole_id": "h1",
		"sequence_number": "1", "throws": "3", "approaches": "two",
		"recorded_at": "2026-01-10T09:00:00Z",
	})
	assert.ErrorContains(t, err, "approaches")
}
