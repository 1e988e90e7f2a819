package round

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/parkside/discscore/internal/config"
	"github.com/parkside/discscore/internal/model"
	"github.com/parkside/discscore/internal/queue"
	"github.com/parkside/discscore/internal/stats"
	"github.com/parkside/discscore/internal/store"
)

// State is the session lifecycle position.
type State int

const (
	// StateConfiguring: the course is being defined hole-by-hole during
	// its first round; hole metadata is editable alongside scoring.
	StateConfiguring State = iota + 1
	// StateScoring: holes are fixed, one active hole at a time.
	StateScoring
	// StateCompleted: terminal; the round and its scores are frozen.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateConfiguring:
		return "configuring"
	case StateScoring:
		return "scoring"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const defaultPar = 3

// Outbox is the session's view of the sync layer: fire the remote write or
// park it, and report how much is not yet backed up. *queue.Queue satisfies
// this.
type Outbox interface {
	Dispatch(ctx context.Context, kind queue.Kind, payload any) error
	Pending(ctx context.Context) int
}

// Deps are the collaborators a session needs. Everything is injected; there
// is no shared global state.
type Deps struct {
	Store  store.Store
	Outbox Outbox
	IDs    model.IDGenerator
	Bounds config.Bounds
	Stats  stats.Options
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Session is the state machine for one in-progress round. It is the sole
// owner of the round and its scores until completion; only one incomplete
// round may exist at a time.
type Session struct {
	deps Deps

	state  State
	course model.Course
	holes  []model.Hole // sorted by sequence number; may be short while configuring
	round  model.Round
	scores map[string]model.Score // keyed by hole ID
	idx    int
}

// ActiveRound returns the incomplete round, if any.
func ActiveRound(ctx context.Context, s store.Store) (model.Round, bool) {
	for _, r := range store.All[model.Round](ctx, s, model.CollectionRounds) {
		if !r.Completed {
			return r, true
		}
	}
	return model.Round{}, false
}

// StartNewCourse begins a round on a brand-new course, entering the
// configuring state: holes are defined one at a time as they are played.
// Refused with ErrActiveRound while another round is incomplete.
func StartNewCourse(ctx context.Context, deps Deps, name string, holeCount int) (*Session, error) {
	if _, active := ActiveRound(ctx, deps.Store); active {
		return nil, ErrActiveRound
	}
	if name == "" {
		return nil, fmt.Errorf("course name is required")
	}
	b := deps.Bounds
	if holeCount < b.HoleCountMin || holeCount > b.HoleCountMax {
		return nil, fmt.Errorf("hole count %d out of range [%d, %d]", holeCount, b.HoleCountMin, b.HoleCountMax)
	}

	course := model.Course{
		ID:        deps.IDs.NewID(),
		Name:      name,
		HoleCount: holeCount,
		CreatedAt: deps.now(),
	}
	if err := deps.Store.Put(ctx, model.CollectionCourses, course); err != nil {
		return nil, fmt.Errorf("persist course: %w", err)
	}
	if err := deps.Outbox.Dispatch(ctx, queue.KindCreateCourse, course); err != nil {
		return nil, err
	}

	sess := &Session{
		deps:   deps,
		state:  StateConfiguring,
		course: course,
		scores: map[string]model.Score{},
	}
	if err := sess.createRound(ctx); err != nil {
		return nil, err
	}
	slog.Info("round started on new course", "course", course.ID, "round", sess.round.ID, "holes", holeCount)
	return sess, nil
}

// Start begins a round on an existing course. If the course's holes were
// never fully defined the session re-enters the configuring state for the
// missing ones; otherwise hole metadata is read-only.
func Start(ctx context.Context, deps Deps, courseID string) (*Session, error) {
	if _, active := ActiveRound(ctx, deps.Store); active {
		return nil, ErrActiveRound
	}
	course, ok := store.Get[model.Course](ctx, deps.Store, model.CollectionCourses, courseID)
	if !ok {
		return nil, fmt.Errorf("course %s not found", courseID)
	}

	holes := loadHoles(ctx, deps.Store, courseID)
	state := StateScoring
	if len(holes) < course.HoleCount {
		state = StateConfiguring
	}

	sess := &Session{
		deps:   deps,
		state:  state,
		course: course,
		holes:  holes,
		scores: map[string]model.Score{},
	}
	if err := sess.createRound(ctx); err != nil {
		return nil, err
	}
	slog.Info("round started", "course", course.ID, "round", sess.round.ID, "state", state.String())
	return sess, nil
}

// Resume reconstructs a session from its persisted snapshot after an
// interruption. Holes are re-sorted by sequence number on load; storage
// iteration order is not trusted.
func Resume(ctx context.Context, deps Deps, roundID string) (*Session, error) {
	rd, ok := store.Get[model.Round](ctx, deps.Store, model.CollectionRounds, roundID)
	if !ok {
		return nil, fmt.Errorf("round %s not found", roundID)
	}
	if rd.Completed {
		return nil, &StateError{Op: "resume", State: StateCompleted, Detail: "round is already completed"}
	}
	course, ok := store.Get[model.Course](ctx, deps.Store, model.CollectionCourses, rd.CourseID)
	if !ok {
		return nil, fmt.Errorf("course %s not found", rd.CourseID)
	}

	holes := loadHoles(ctx, deps.Store, course.ID)
	scores := map[string]model.Score{}
	for _, sc := range store.ByField[model.Score](ctx, deps.Store, model.CollectionScores, "round_id", rd.ID) {
		scores[sc.HoleID] = sc
	}

	state := StateScoring
	if len(holes) < course.HoleCount {
		state = StateConfiguring
	}
	idx := rd.CurrentIndex
	if idx < 0 || idx >= course.HoleCount {
		idx = 0
	}

	slog.Info("round resumed", "round", rd.ID, "hole", idx+1, "scored", len(scores))
	return &Session{
		deps:   deps,
		state:  state,
		course: course,
		holes:  holes,
		round:  rd,
		scores: scores,
		idx:    idx,
	}, nil
}

// Discard deletes an incomplete round and its scores. Completed rounds are
// immutable and refuse deletion.
func Discard(ctx context.Context, s store.Store, roundID string) error {
	rd, ok := store.Get[model.Round](ctx, s, model.CollectionRounds, roundID)
	if !ok {
		return fmt.Errorf("round %s not found", roundID)
	}
	if rd.Completed {
		return &StateError{Op: "discard", State: StateCompleted, Detail: "completed rounds are immutable"}
	}
	for _, sc := range store.ByField[model.Score](ctx, s, model.CollectionScores, "round_id", rd.ID) {
		if err := s.Remove(ctx, model.CollectionScores, sc.ID); err != nil {
			return err
		}
	}
	if err := s.Remove(ctx, model.CollectionRounds, rd.ID); err != nil {
		return err
	}
	slog.Info("round discarded", "round", rd.ID)
	return nil
}

func loadHoles(ctx context.Context, s store.Store, courseID string) []model.Hole {
	holes := store.ByField[model.Hole](ctx, s, model.CollectionHoles, "course_id", courseID)
	sort.Slice(holes, func(i, j int) bool {
		return holes[i].SequenceNumber < holes[j].SequenceNumber
	})
	return holes
}

func (s *Session) createRound(ctx context.Context) error {
	s.round = model.Round{
		ID:        s.deps.IDs.NewID(),
		CourseID:  s.course.ID,
		StartedAt: s.deps.now(),
	}
	if err := s.deps.Store.Put(ctx, model.CollectionRounds, s.round); err != nil {
		return fmt.Errorf("persist round: %w", err)
	}
	return s.deps.Outbox.Dispatch(ctx, queue.KindCreateRound, s.round)
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Round returns the round snapshot.
func (s *Session) Round() model.Round { return s.round }

// Course returns the course being played.
func (s *Session) Course() model.Course { return s.course }

// CurrentIndex returns the zero-based active hole index.
func (s *Session) CurrentIndex() int { return s.idx }

// PendingSync returns how many remote mutations are not yet acknowledged,
// the "not yet backed up" indicator. Never blocks progress.
func (s *Session) PendingSync(ctx context.Context) int {
	return s.deps.Outbox.Pending(ctx)
}

// HoleView is the editable picture of one hole presented to the caller.
type HoleView struct {
	Index            int // zero-based
	Number           int // one-based sequence number
	Par              int
	Distance         *int
	Throws           int
	Approaches       *int
	Putts            *int
	HasScore         bool
	MetadataEditable bool
	// History summarizes prior scores on this hole across all rounds.
	History stats.HoleStats
}

// EnterHole makes hole index the active one and returns its editable view.
// A previously recorded score loads as the current values; otherwise throws
// defaults to the hole's par. Out-of-range indices and completed sessions
// are contract violations.
func (s *Session) EnterHole(ctx context.Context, index int) (HoleView, error) {
	if s.state == StateCompleted {
		return HoleView{}, &StateError{Op: "enterHole", State: s.state, Detail: "session is frozen"}
	}
	if index < 0 || index >= s.course.HoleCount {
		return HoleView{}, &StateError{
			Op: "enterHole", State: s.state,
			Detail: fmt.Sprintf("index %d out of range [0, %d)", index, s.course.HoleCount),
		}
	}
	s.idx = index
	if err := s.persistIndex(ctx); err != nil {
		return HoleView{}, err
	}
	return s.viewAt(ctx, index), nil
}

// CurrentHole returns the view of the active hole.
func (s *Session) CurrentHole(ctx context.Context) HoleView {
	return s.viewAt(ctx, s.idx)
}

func (s *Session) viewAt(ctx context.Context, index int) HoleView {
	v := HoleView{
		Index:            index,
		Number:           index + 1,
		Par:              defaultPar,
		MetadataEditable: s.state == StateConfiguring,
	}
	if index < len(s.holes) {
		h := s.holes[index]
		v.Par = h.Par
		v.Distance = h.Distance
		history := store.ByField[model.Score](ctx, s.deps.Store, model.CollectionScores, "hole_id", h.ID)
		v.History = stats.ForHole(history, s.deps.Stats)
		if sc, ok := s.scores[h.ID]; ok {
			v.Throws = sc.Throws
			v.Approaches = sc.Approaches
			v.Putts = sc.Putts
			v.HasScore = true
			return v
		}
	}
	v.Throws = v.Par
	return v
}

// Navigate moves the active hole by delta without validation. Only backward
// movement is allowed here; moving forward goes through SubmitHole so no
// hole is ever skipped past validation.
func (s *Session) Navigate(ctx context.Context, delta int) (int, error) {
	if s.state == StateCompleted {
		return s.idx, &StateError{Op: "navigate", State: s.state, Detail: "session is frozen"}
	}
	if delta > 0 {
		return s.idx, &StateError{Op: "navigate", State: s.state, Detail: "forward movement requires submitHole"}
	}
	next := s.idx + delta
	if next < 0 {
		return s.idx, &StateError{Op: "navigate", State: s.state, Detail: fmt.Sprintf("index %d out of range", next)}
	}
	s.idx = next
	if err := s.persistIndex(ctx); err != nil {
		return s.idx, err
	}
	return s.idx, nil
}

// Result reports the outcome of a successful SubmitHole.
type Result struct {
	Score     model.Score
	Completed bool
	// Summary is only set when Completed.
	Summary *Summary
}

// Summary is the frozen outcome of a completed round, with its standing
// against course history.
type Summary struct {
	TotalThrows  int
	TotalPar     int
	Relative     int // TotalThrows - TotalPar
	Comparison   stats.Comparison
	PersonalBest bool
}

// SubmitHole validates the entry for the active hole and, on success,
// persists the score and advances. Submitting the final hole completes the
// round: totals are computed, frozen, and the session becomes read-only.
// On validation failure nothing is written and the structured error set is
// returned.
func (s *Session) SubmitHole(ctx context.Context, in Input) (Result, error) {
	if s.state == StateCompleted {
		return Result{}, &StateError{Op: "submitHole", State: s.state, Detail: "session is frozen"}
	}

	if errs := Validate(in, s.deps.Bounds); len(errs) > 0 {
		return Result{}, errs
	}

	hole, err := s.ensureHole(ctx, in)
	if err != nil {
		return Result{}, err
	}

	sc, err := s.recordScore(ctx, hole, in)
	if err != nil {
		return Result{}, err
	}

	res := Result{Score: sc}
	if s.idx == s.course.HoleCount-1 {
		summary, err := s.complete(ctx)
		if err != nil {
			return Result{}, err
		}
		res.Completed = true
		res.Summary = summary
	} else {
		s.idx++
		if err := s.persistIndex(ctx); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

// ensureHole returns the hole at the active index, creating it from the
// input metadata while the session is configuring.
func (s *Session) ensureHole(ctx context.Context, in Input) (model.Hole, error) {
	if s.idx < len(s.holes) {
		hole := s.holes[s.idx]
		if s.state == StateConfiguring && (in.Par != nil || in.Distance != nil) {
			if in.Par != nil {
				if err := validateHoleSetup(*in.Par, s.deps.Bounds); err != nil {
					return model.Hole{}, err
				}
				hole.Par = *in.Par
			}
			if in.Distance != nil {
				hole.Distance = in.Distance
			}
			if err := s.deps.Store.Put(ctx, model.CollectionHoles, hole); err != nil {
				return model.Hole{}, fmt.Errorf("persist hole: %w", err)
			}
			s.holes[s.idx] = hole
		}
		return hole, nil
	}

	if s.state != StateConfiguring {
		return model.Hole{}, &StateError{
			Op: "submitHole", State: s.state,
			Detail: fmt.Sprintf("hole %d is not defined", s.idx+1),
		}
	}
	if s.idx != len(s.holes) {
		// Holes are defined strictly in sequence so the 1..N range stays
		// contiguous.
		return model.Hole{}, &StateError{
			Op: "submitHole", State: s.state,
			Detail: fmt.Sprintf("hole %d cannot be defined before hole %d", s.idx+1, len(s.holes)+1),
		}
	}

	par := defaultPar
	if in.Par != nil {
		par = *in.Par
	}
	if err := validateHoleSetup(par, s.deps.Bounds); err != nil {
		return model.Hole{}, err
	}
	hole := model.Hole{
		ID:             s.deps.IDs.NewID(),
		CourseID:       s.course.ID,
		SequenceNumber: s.idx + 1,
		Par:            par,
		Distance:       in.Distance,
	}
	if err := s.deps.Store.Put(ctx, model.CollectionHoles, hole); err != nil {
		return model.Hole{}, fmt.Errorf("persist hole: %w", err)
	}
	s.holes = append(s.holes, hole)
	if err := s.deps.Outbox.Dispatch(ctx, queue.KindCreateHoles, []model.Hole{hole}); err != nil {
		return model.Hole{}, err
	}
	return hole, nil
}

func (s *Session) recordScore(ctx context.Context, hole model.Hole, in Input) (model.Score, error) {
	sc, exists := s.scores[hole.ID]
	if !exists {
		sc = model.Score{
			ID:      s.deps.IDs.NewID(),
			RoundID: s.round.ID,
			HoleID:  hole.ID,
		}
	}
	sc.SequenceNumber = hole.SequenceNumber
	sc.Throws = in.Throws
	sc.Approaches = in.Approaches
	sc.Putts = in.Putts
	sc.RecordedAt = s.deps.now()

	if err := s.deps.Store.Put(ctx, model.CollectionScores, sc); err != nil {
		return model.Score{}, fmt.Errorf("persist score: %w", err)
	}
	s.scores[hole.ID] = sc

	if err := s.deps.Outbox.Dispatch(ctx, queue.KindCreateScores, []model.Score{sc}); err != nil {
		return model.Score{}, err
	}
	return sc, nil
}

// complete freezes the round: totals computed and stored, course last-played
// stamped, state terminal.
func (s *Session) complete(ctx context.Context) (*Summary, error) {
	totalThrows := 0
	for _, sc := range s.scores {
		totalThrows += sc.Throws
	}
	totalPar := 0
	for _, h := range s.holes {
		totalPar += h.Par
	}

	// Historical standing is computed against rounds completed before this
	// one.
	history := store.ByField[model.Round](ctx, s.deps.Store, model.CollectionRounds, "course_id", s.course.ID)
	prior := history[:0]
	for _, r := range history {
		if r.ID != s.round.ID {
			prior = append(prior, r)
		}
	}
	courseStats := stats.ForCourse(prior, s.holes, s.deps.Stats)

	s.round.Completed = true
	s.round.TotalThrows = &totalThrows
	s.round.TotalPar = &totalPar
	s.round.CurrentIndex = 0
	if err := s.deps.Store.Put(ctx, model.CollectionRounds, s.round); err != nil {
		return nil, fmt.Errorf("persist completed round: %w", err)
	}
	if err := s.deps.Outbox.Dispatch(ctx, queue.KindUpdateRound, s.round); err != nil {
		return nil, err
	}

	played := s.deps.now()
	s.course.LastPlayed = &played
	if err := s.deps.Store.Put(ctx, model.CollectionCourses, s.course); err != nil {
		return nil, fmt.Errorf("persist course: %w", err)
	}
	if err := s.deps.Outbox.Dispatch(ctx, queue.KindUpdateCourseLastPlayed, s.course); err != nil {
		return nil, err
	}

	s.state = StateCompleted
	slog.Info("round completed", "round", s.round.ID, "total", totalThrows, "par", totalPar)

	return &Summary{
		TotalThrows:  totalThrows,
		TotalPar:     totalPar,
		Relative:     totalThrows - totalPar,
		Comparison:   stats.Compare(totalThrows, courseStats),
		PersonalBest: stats.IsPersonalBest(totalThrows, courseStats),
	}, nil
}

func (s *Session) persistIndex(ctx context.Context) error {
	s.round.CurrentIndex = s.idx
	if err := s.deps.Store.Put(ctx, model.CollectionRounds, s.round); err != nil {
		return fmt.Errorf("persist round position: %w", err)
	}
	return nil
}
