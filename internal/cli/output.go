package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/parkside/discscore/internal/model"
	"github.com/parkside/discscore/internal/round"
	"github.com/parkside/discscore/internal/stats"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure, sync left operations pending, etc.
	ExitCommandError = 2 // Command error (bad flags, store unavailable, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// sortHoles orders holes by sequence number; storage order is not trusted.
func sortHoles(holes []model.Hole) []model.Hole {
	sort.Slice(holes, func(i, j int) bool {
		return holes[i].SequenceNumber < holes[j].SequenceNumber
	})
	return holes
}

func renderCourses(w io.Writer, courses []model.Course) {
	if len(courses) == 0 {
		fmt.Fprintln(w, "No courses yet. Start one with: discscore round start --new NAME --holes N")
		return
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	for _, c := range courses {
		last := "never played"
		if c.LastPlayed != nil {
			last = "last played " + c.LastPlayed.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-24s %2d holes  %s  [%s]\n", c.Name, c.HoleCount, last, c.ID)
	}
}

func renderHoleView(w io.Writer, v round.HoleView) {
	fmt.Fprintf(w, "Hole %d (par %d", v.Number, v.Par)
	if v.Distance != nil {
		fmt.Fprintf(w, ", %dm", *v.Distance)
	}
	fmt.Fprint(w, ")")
	if v.HasScore {
		fmt.Fprintf(w, ", recorded %d", v.Throws)
	}
	fmt.Fprintln(w)

	h := v.History
	if h.Plays > 0 && h.HasAvg {
		fmt.Fprintf(w, "  history: %d plays, avg %.1f throws", h.Plays, h.AvgThrows)
		if h.Approaches.Reliable {
			fmt.Fprintf(w, ", avg %.1f approaches", h.Approaches.Average)
		}
		if h.Putts.Reliable {
			fmt.Fprintf(w, ", avg %.1f putts", h.Putts.Average)
		}
		fmt.Fprintln(w)
	}
}

func renderValidationErrors(w io.Writer, errs round.ValidationErrors) {
	fmt.Fprintln(w, "Score not recorded:")
	for _, fe := range errs {
		fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
	}
}

func renderSummary(w io.Writer, s *round.Summary) {
	fmt.Fprintf(w, "Round complete: %d throws, par %d (%s)\n",
		s.TotalThrows, s.TotalPar, stats.FormatRelative(s.Relative))
	switch {
	case s.Comparison.FirstRound:
		fmt.Fprintln(w, "First round on this course.")
	case s.PersonalBest:
		fmt.Fprintf(w, "Personal best! %.1f vs your average.\n", s.Comparison.Diff)
	case s.Comparison.Improved:
		fmt.Fprintf(w, "%.1f better than your average.\n", -s.Comparison.Diff)
	default:
		fmt.Fprintf(w, "%.1f over your average.\n", s.Comparison.Diff)
	}
}

// renderScorecard prints the hole-by-hole state of a round.
func renderScorecard(w io.Writer, course model.Course, holes []model.Hole, scores map[string]model.Score, currentIdx int, pending int) {
	fmt.Fprintf(w, "%s: hole %d of %d\n", course.Name, currentIdx+1, course.HoleCount)

	totalThrows, totalPar, scored := 0, 0, 0
	for i, h := range holes {
		marker := "  "
		if i == currentIdx {
			marker = "> "
		}
		line := fmt.Sprintf("%shole %2d  par %d", marker, h.SequenceNumber, h.Par)
		if sc, ok := scores[h.ID]; ok {
			line += fmt.Sprintf("  %2d throws", sc.Throws)
			var extras []string
			if sc.Approaches != nil {
				extras = append(extras, fmt.Sprintf("%d appr", *sc.Approaches))
			}
			if sc.Putts != nil {
				extras = append(extras, fmt.Sprintf("%d putts", *sc.Putts))
			}
			if len(extras) > 0 {
				line += "  (" + strings.Join(extras, ", ") + ")"
			}
			totalThrows += sc.Throws
			totalPar += h.Par
			scored++
		}
		fmt.Fprintln(w, line)
	}

	if scored > 0 {
		fmt.Fprintf(w, "through %d: %d throws (%s)\n", scored, totalThrows, stats.FormatRelative(totalThrows-totalPar))
	}
	if pending > 0 {
		fmt.Fprintf(w, "%d change(s) not yet backed up\n", pending)
	}
}

// renderCourseStats prints the aggregate picture for one course.
func renderCourseStats(w io.Writer, course model.Course, cs stats.CourseStats, holes []model.Hole, holeStats []stats.HoleStats) {
	fmt.Fprintf(w, "%s: %d holes, par %d\n", course.Name, course.HoleCount, cs.TotalPar)

	if cs.Rounds == 0 {
		fmt.Fprintln(w, "No completed rounds yet.")
		return
	}

	fmt.Fprintf(w, "rounds:  %d completed\n", cs.Rounds)
	fmt.Fprintf(w, "best:    %d (%s)\n", cs.BestTotal, stats.FormatRelative(cs.BestTotal-cs.TotalPar))
	fmt.Fprintf(w, "worst:   %d (%s)\n", cs.WorstTotal, stats.FormatRelative(cs.WorstTotal-cs.TotalPar))
	if cs.HasAvg {
		fmt.Fprintf(w, "average: %.1f (%+.1f vs par)\n", cs.AvgTotal, cs.AvgVsPar)
	}

	for i, h := range holes {
		if i >= len(holeStats) {
			break
		}
		hs := holeStats[i]
		if hs.Plays == 0 {
			continue
		}
		line := fmt.Sprintf("hole %2d: ", h.SequenceNumber)
		if hs.HasAvg {
			line += fmt.Sprintf("avg %.1f over %d plays", hs.AvgThrows, hs.Plays)
		} else {
			line += fmt.Sprintf("%d plays", hs.Plays)
		}
		if hs.Approaches.Reliable {
			line += fmt.Sprintf(", %.1f approaches", hs.Approaches.Average)
		}
		if hs.Putts.Reliable {
			line += fmt.Sprintf(", %.1f putts", hs.Putts.Average)
		}
		fmt.Fprintln(w, line)
	}
}
