// Package stats derives performance metrics from stored scoring history.
//
// Every function here is pure: inputs are already-loaded slices of model
// records, outputs are value types, and nothing touches storage. The round
// session and the CLI load data through the record store and hand it over.
package stats

import (
	"fmt"

	"github.com/parkside/discscore/internal/model"
)

// Options are the thresholds below which aggregates are withheld.
type Options struct {
	// MinRounds is the minimum number of data points before any average
	// is surfaced.
	MinRounds int
	// MinDataPoints is the minimum number of entries carrying a sub-value
	// before its average counts as reliable.
	MinDataPoints int
}

// DefaultOptions mirror the configuration defaults.
func DefaultOptions() Options {
	return Options{MinRounds: 1, MinDataPoints: 3}
}

// SubValueAverage is the average of an optional per-hole metric. The value
// is always computed over the entries that carry the metric, but Reliable
// only flips once enough of them exist; callers must not surface an
// unreliable average as meaningful.
type SubValueAverage struct {
	Count    int
	Average  float64
	Reliable bool
}

// HoleStats summarizes the history of one hole.
type HoleStats struct {
	Plays      int
	AvgThrows  float64
	HasAvg     bool
	Approaches SubValueAverage
	Putts      SubValueAverage
}

// ForHole computes per-hole statistics over that hole's scores.
func ForHole(scores []model.Score, o Options) HoleStats {
	st := HoleStats{Plays: len(scores)}

	throws := make([]int, len(scores))
	approaches := make([]*int, len(scores))
	putts := make([]*int, len(scores))
	for i, sc := range scores {
		throws[i] = sc.Throws
		approaches[i] = sc.Approaches
		putts[i] = sc.Putts
	}

	if avg, ok := meanInts(throws); ok && len(throws) >= o.MinRounds {
		st.AvgThrows, st.HasAvg = avg, true
	}
	st.Approaches = subValueAverage(approaches, o.MinDataPoints)
	st.Putts = subValueAverage(putts, o.MinDataPoints)
	return st
}

func subValueAverage(vals []*int, minPoints int) SubValueAverage {
	count := 0
	for _, v := range vals {
		if v != nil {
			count++
		}
	}
	avg, ok := Mean(vals)
	return SubValueAverage{
		Count:    count,
		Average:  avg,
		Reliable: ok && count >= minPoints,
	}
}

// CourseStats summarizes completed rounds on one course. Incomplete rounds
// are invisible to statistics.
type CourseStats struct {
	Rounds   int
	TotalPar int

	BestTotal    int
	BestRoundID  string
	WorstTotal   int
	WorstRoundID string

	AvgTotal float64
	AvgVsPar float64
	HasAvg   bool
}

// ForCourse computes course statistics from the course's rounds and holes.
// Only rounds with completed=true and frozen totals participate.
func ForCourse(rounds []model.Round, holes []model.Hole, o Options) CourseStats {
	st := CourseStats{}
	for _, h := range holes {
		st.TotalPar += h.Par
	}

	totals := []int{}
	vsPar := []int{}
	for _, r := range rounds {
		if !r.Completed || r.TotalThrows == nil {
			continue
		}
		total := *r.TotalThrows
		par := st.TotalPar
		if r.TotalPar != nil {
			par = *r.TotalPar
		}
		totals = append(totals, total)
		vsPar = append(vsPar, total-par)

		if st.Rounds == 0 || total < st.BestTotal {
			st.BestTotal, st.BestRoundID = total, r.ID
		}
		if st.Rounds == 0 || total > st.WorstTotal {
			st.WorstTotal, st.WorstRoundID = total, r.ID
		}
		st.Rounds++
	}

	if st.Rounds >= o.MinRounds {
		if avg, ok := meanInts(totals); ok {
			st.AvgTotal, st.HasAvg = avg, true
		}
		if avg, ok := meanInts(vsPar); ok {
			st.AvgVsPar = avg
		}
	}
	return st
}

// Comparison relates a newly completed total to course history.
type Comparison struct {
	// FirstRound is true when no completed history exists; the remaining
	// fields are meaningless in that case.
	FirstRound bool
	// Diff is the signed difference from the historical average total.
	Diff float64
	// Improved is true when the new total beats the average (Diff < 0).
	Improved bool
}

// Compare reports how a new total stands against the historical average.
func Compare(newTotal int, cs CourseStats) Comparison {
	if cs.Rounds == 0 || !cs.HasAvg {
		return Comparison{FirstRound: true}
	}
	diff := Round1(float64(newTotal) - cs.AvgTotal)
	return Comparison{Diff: diff, Improved: diff < 0}
}

// IsPersonalBest reports whether a new total strictly beats the best
// recorded total. Ties are not a personal best, and a first round has no
// recorded best to beat.
func IsPersonalBest(newTotal int, cs CourseStats) bool {
	return cs.Rounds > 0 && newTotal < cs.BestTotal
}

// FormatRelative renders a relative-to-par value the way scorecards do:
// "E" for even, explicit sign otherwise.
func FormatRelative(n int) string {
	if n == 0 {
		return "E"
	}
	return fmt.Sprintf("%+d", n)
}
