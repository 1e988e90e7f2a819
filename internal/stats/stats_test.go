package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkside/discscore/internal/model"
)

func intp(v int) *int { return &v }

func TestRound1_HalfUp(t *testing.T) {
	assert.Equal(t, 2.3, Round1(2.25))
	assert.Equal(t, 2.2, Round1(2.24))
	assert.Equal(t, 3.0, Round1(2.95))
	assert.Equal(t, -1.5, Round1(-1.45))
	assert.Equal(t, 0.0, Round1(0))
}

func TestMean_IgnoresAbsentEntries(t *testing.T) {
	// Divisor is the count of present values only.
	mean, ok := Mean([]*int{intp(2), nil, intp(4), nil})
	require.True(t, ok)
	assert.Equal(t, 3.0, mean)
}

func TestMean_AllAbsentHasNoMean(t *testing.T) {
	// "No average" is distinct from an average of zero.
	mean, ok := Mean([]*int{nil, nil, nil})
	assert.False(t, ok)
	assert.Equal(t, 0.0, mean)

	mean, ok = Mean(nil)
	assert.False(t, ok)
	assert.Equal(t, 0.0, mean)
}

func TestForHole_AverageThrows(t *testing.T) {
	scores := []model.Score{
		{Throws: 3}, {Throws: 4}, {Throws: 3},
	}
	st := ForHole(scores, DefaultOptions())
	assert.Equal(t, 3, st.Plays)
	require.True(t, st.HasAvg)
	assert.Equal(t, 3.3, st.AvgThrows)
}

func TestForHole_NoScores(t *testing.T) {
	st := ForHole(nil, DefaultOptions())
	assert.Equal(t, 0, st.Plays)
	assert.False(t, st.HasAvg)
	assert.False(t, st.Approaches.Reliable)
	assert.False(t, st.Putts.Reliable)
}

func TestForHole_SubValueWithheldBelowMinimum(t *testing.T) {
	// Ten entries but only two carry approaches: the average exists
	// internally yet is not surfaced as reliable.
	scores := make([]model.Score, 10)
	for i := range scores {
		scores[i] = model.Score{Throws: 3}
	}
	scores[0].Approaches = intp(1)
	scores[1].Approaches = intp(2)

	st := ForHole(scores, DefaultOptions())
	assert.Equal(t, 10, st.Plays)
	assert.Equal(t, 2, st.Approaches.Count)
	assert.False(t, st.Approaches.Reliable)
	assert.Equal(t, 1.5, st.Approaches.Average)
}

func TestForHole_SubValueReliableAtMinimum(t *testing.T) {
	scores := []model.Score{
		{Throws: 3, Putts: intp(1)},
		{Throws: 4, Putts: intp(2)},
		{Throws: 3, Putts: intp(2)},
	}
	st := ForHole(scores, DefaultOptions())
	require.True(t, st.Putts.Reliable)
	assert.Equal(t, 3, st.Putts.Count)
	assert.Equal(t, 1.7, st.Putts.Average)
}

func courseFixture() ([]model.Round, []model.Hole) {
	holes := []model.Hole{
		{ID: "h1", SequenceNumber: 1, Par: 3},
		{ID: "h2", SequenceNumber: 2, Par: 3},
		{ID: "h3", SequenceNumber: 3, Par: 4},
	}
	rounds := []model.Round{
		{ID: "r1", Completed: true, TotalThrows: intp(12), TotalPar: intp(10)},
		{ID: "r2", Completed: true, TotalThrows: intp(9), TotalPar: intp(10)},
		{ID: "r3", Completed: true, TotalThrows: intp(11), TotalPar: intp(10)},
		{ID: "r4", Completed: false}, // invisible to statistics
	}
	return rounds, holes
}

func TestForCourse_Aggregates(t *testing.T) {
	rounds, holes := courseFixture()
	cs := ForCourse(rounds, holes, DefaultOptions())

	assert.Equal(t, 3, cs.Rounds)
	assert.Equal(t, 10, cs.TotalPar)
	assert.Equal(t, 9, cs.BestTotal)
	assert.Equal(t, "r2", cs.BestRoundID)
	assert.Equal(t, 12, cs.WorstTotal)
	assert.Equal(t, "r1", cs.WorstRoundID)
	require.True(t, cs.HasAvg)
	assert.Equal(t, 10.7, cs.AvgTotal)
	assert.Equal(t, 0.7, cs.AvgVsPar)
}

func TestForCourse_Empty(t *testing.T) {
	_, holes := courseFixture()
	cs := ForCourse(nil, holes, DefaultOptions())
	assert.Equal(t, 0, cs.Rounds)
	assert.Equal(t, 10, cs.TotalPar)
	assert.False(t, cs.HasAvg)
}

func TestCompare_FirstRound(t *testing.T) {
	cmp := Compare(12, CourseStats{})
	assert.True(t, cmp.FirstRound)
}

func TestCompare_Improvement(t *testing.T) {
	rounds, holes := courseFixture()
	cs := ForCourse(rounds, holes, DefaultOptions())

	cmp := Compare(9, cs)
	assert.False(t, cmp.FirstRound)
	assert.Equal(t, -1.7, cmp.Diff)
	assert.True(t, cmp.Improved)

	cmp = Compare(12, cs)
	assert.Equal(t, 1.3, cmp.Diff)
	assert.False(t, cmp.Improved)
}

func TestIsPersonalBest_Strict(t *testing.T) {
	rounds, holes := courseFixture()
	cs := ForCourse(rounds, holes, DefaultOptions())

	assert.True(t, IsPersonalBest(8, cs))
	assert.False(t, IsPersonalBest(9, cs), "a tie is not a personal best")
	assert.False(t, IsPersonalBest(10, cs))
	assert.False(t, IsPersonalBest(8, CourseStats{}), "no history, nothing to beat")
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "E", FormatRelative(0))
	assert.Equal(t, "+2", FormatRelative(2))
	assert.Equal(t, "-3", FormatRelative(-3))
}
