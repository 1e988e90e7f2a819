package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/parkside/discscore/internal/model"
	"github.com/parkside/discscore/internal/round"
	"github.com/parkside/discscore/internal/store"
)

// NewRoundCommand creates the round command group.
func NewRoundCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Record a round of play",
	}
	cmd.AddCommand(newRoundStartCommand(opts))
	cmd.AddCommand(newRoundScoreCommand(opts))
	cmd.AddCommand(newRoundBackCommand(opts))
	cmd.AddCommand(newRoundStatusCommand(opts))
	cmd.AddCommand(newRoundDiscardCommand(opts))
	return cmd
}

func newRoundStartCommand(opts *RootOptions) *cobra.Command {
	var (
		courseID  string
		newName   string
		holeCount int
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a round on an existing course (--course) or a new one (--new)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			var sess *round.Session
			switch {
			case newName != "":
				sess, err = round.StartNewCourse(ctx, a.roundDeps(), newName, holeCount)
			case courseID != "":
				sess, err = round.Start(ctx, a.roundDeps(), courseID)
			default:
				return NewExitError(ExitCommandError, "either --course or --new is required")
			}
			if err == round.ErrActiveRound {
				return WrapExitError(ExitFailure,
					"a round is already in progress; finish it, or run 'discscore round discard --yes'", err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start round", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started round on %s.\n", sess.Course().Name)
			renderHoleView(out, sess.CurrentHole(ctx))
			return nil
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "existing course id")
	cmd.Flags().StringVar(&newName, "new", "", "name of a new course")
	cmd.Flags().IntVar(&holeCount, "holes", 18, "hole count for a new course")
	return cmd
}

func newRoundScoreCommand(opts *RootOptions) *cobra.Command {
	var (
		approaches, putts int
		par, distance     int
	)
	cmd := &cobra.Command{
		Use:   "score THROWS",
		Short: "Record the active hole and advance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			throws, err := parseThrows(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			sess, err := resumeActive(cmd, a)
			if err != nil {
				return err
			}

			in := round.Input{Throws: throws}
			if cmd.Flags().Changed("approaches") {
				in.Approaches = model.IntPtr(approaches)
			}
			if cmd.Flags().Changed("putts") {
				in.Putts = model.IntPtr(putts)
			}
			if cmd.Flags().Changed("par") {
				in.Par = model.IntPtr(par)
			}
			if cmd.Flags().Changed("distance") {
				in.Distance = model.IntPtr(distance)
			}

			out := cmd.OutOrStdout()
			res, err := sess.SubmitHole(ctx, in)
			if verrs, ok := round.AsValidationErrors(err); ok {
				renderValidationErrors(out, verrs)
				return NewExitError(ExitFailure, "validation failed")
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to record score", err)
			}

			if res.Completed {
				renderSummary(out, res.Summary)
				if pending := sess.PendingSync(ctx); pending > 0 {
					fmt.Fprintf(out, "%d change(s) not yet backed up. Run 'discscore sync'.\n", pending)
				}
				return nil
			}
			renderHoleView(out, sess.CurrentHole(ctx))
			return nil
		},
	}
	cmd.Flags().IntVar(&approaches, "approaches", 0, "approach count for the hole")
	cmd.Flags().IntVar(&putts, "putts", 0, "putt count for the hole")
	cmd.Flags().IntVar(&par, "par", 0, "par for the hole (while configuring a new course)")
	cmd.Flags().IntVar(&distance, "distance", 0, "distance in meters (while configuring a new course)")
	return cmd
}

func newRoundBackCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Step back to review the previous hole",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			sess, err := resumeActive(cmd, a)
			if err != nil {
				return err
			}
			if _, err := sess.Navigate(ctx, -1); err != nil {
				return WrapExitError(ExitFailure, "cannot step back", err)
			}
			renderHoleView(cmd.OutOrStdout(), sess.CurrentHole(ctx))
			return nil
		},
	}
}

func newRoundStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active round's scorecard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			rd, ok := round.ActiveRound(ctx, a.store)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No round in progress.")
				return nil
			}
			course, _ := store.Get[model.Course](ctx, a.store, model.CollectionCourses, rd.CourseID)
			holes := store.ByField[model.Hole](ctx, a.store, model.CollectionHoles, "course_id", rd.CourseID)
			scores := map[string]model.Score{}
			for _, sc := range store.ByField[model.Score](ctx, a.store, model.CollectionScores, "round_id", rd.ID) {
				scores[sc.HoleID] = sc
			}
			renderScorecard(cmd.OutOrStdout(), course, sortHoles(holes), scores, rd.CurrentIndex, a.queue.Pending(ctx))
			return nil
		},
	}
}

func newRoundDiscardCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "discard",
		Short: "Discard the in-progress round and its scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "discard is destructive; pass --yes to confirm")
			}
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			rd, ok := round.ActiveRound(ctx, a.store)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No round in progress.")
				return nil
			}
			if err := round.Discard(ctx, a.store, rd.ID); err != nil {
				return WrapExitError(ExitCommandError, "failed to discard round", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Round discarded.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the discard")
	return cmd
}

// parseThrows parses the positional throws argument strictly: the whole
// token must be a base-10 integer, so "3abc" is rejected rather than read
// as 3.
func parseThrows(arg string) (int, error) {
	throws, err := strconv.Atoi(arg)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid throws value %q", arg))
	}
	return throws, nil
}

// resumeActive reconstructs the session for the one in-progress round.
func resumeActive(cmd *cobra.Command, a *app) (*round.Session, error) {
	rd, ok := round.ActiveRound(cmd.Context(), a.store)
	if !ok {
		return nil, NewExitError(ExitFailure, "no round in progress; start one with 'discscore round start'")
	}
	sess, err := round.Resume(cmd.Context(), a.roundDeps(), rd.ID)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to resume round", err)
	}
	return sess, nil
}
