package cli

import (
	"github.com/spf13/cobra"

	"github.com/parkside/discscore/internal/model"
	"github.com/parkside/discscore/internal/stats"
	"github.com/parkside/discscore/internal/store"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	var courseID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show performance statistics for a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			if courseID == "" {
				return NewExitError(ExitCommandError, "--course is required")
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			course, ok := store.Get[model.Course](ctx, a.store, model.CollectionCourses, courseID)
			if !ok {
				return NewExitError(ExitCommandError, "course not found: "+courseID)
			}

			holes := sortHoles(store.ByField[model.Hole](ctx, a.store, model.CollectionHoles, "course_id", courseID))
			rounds := store.ByField[model.Round](ctx, a.store, model.CollectionRounds, "course_id", courseID)

			holeStats := make([]stats.HoleStats, len(holes))
			for i, h := range holes {
				scores := store.ByField[model.Score](ctx, a.store, model.CollectionScores, "hole_id", h.ID)
				holeStats[i] = stats.ForHole(scores, a.statsOptions())
			}

			cs := stats.ForCourse(rounds, holes, a.statsOptions())
			renderCourseStats(cmd.OutOrStdout(), course, cs, holes, holeStats)
			return nil
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "course id")
	return cmd
}
