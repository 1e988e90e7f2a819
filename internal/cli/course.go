package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/parkside/discscore/internal/model"
	"github.com/parkside/discscore/internal/queue"
	"github.com/parkside/discscore/internal/store"
)

// NewCourseCommand creates the course command group.
func NewCourseCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Manage courses",
	}
	cmd.AddCommand(newCourseCreateCommand(opts))
	cmd.AddCommand(newCourseListCommand(opts))
	return cmd
}

func newCourseCreateCommand(opts *RootOptions) *cobra.Command {
	var holeCount int
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a course ahead of play",
		Long: "Creates a course record with the given hole count. Hole pars and\n" +
			"distances are defined during the first round, hole by hole.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			b := a.cfg.Bounds
			if holeCount < b.HoleCountMin || holeCount > b.HoleCountMax {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("hole count %d out of range [%d, %d]", holeCount, b.HoleCountMin, b.HoleCountMax))
			}

			course := model.Course{
				ID:        model.UUIDv7Generator{}.NewID(),
				Name:      args[0],
				HoleCount: holeCount,
				CreatedAt: time.Now(),
			}
			if err := a.store.Put(ctx, model.CollectionCourses, course); err != nil {
				return WrapExitError(ExitCommandError, "failed to persist course", err)
			}
			if err := a.queue.Dispatch(ctx, queue.KindCreateCourse, course); err != nil {
				return WrapExitError(ExitCommandError, "failed to record course for sync", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d holes) [%s]\n", course.Name, course.HoleCount, course.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&holeCount, "holes", 18, "number of holes")
	return cmd
}

func newCourseListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			courses := store.All[model.Course](cmd.Context(), a.store, model.CollectionCourses)
			renderCourses(cmd.OutOrStdout(), courses)
			return nil
		},
	}
}
