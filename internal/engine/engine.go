// Package engine decides, each cycle, which roommate performs which
// chore. It reads the roster, catalog, and scheduler state through the
// repository interfaces, computes a fresh assignment set in memory, and
// writes everything back in one pass at the end of the run.
package engine

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrChoreNotFound = errors.New("chore not found")
	ErrNoRoommates   = errors.New("no roommates to assign to")
)

type Engine struct {
	roommateRepo   repository.RoommateRepository
	choreRepo      repository.ChoreRepository
	assignmentRepo repository.AssignmentRepository
	scheduleRepo   repository.ScheduleStateRepository

	// Runs are read-modify-write over shared state with no storage-level
	// locking, so overlapping invocations are serialized here.
	mu sync.Mutex

	rng              *rand.Rand
	clock            func() time.Time
	minimumGuarantee bool
}

type Option func(*Engine)

// WithRand replaces the random source used for weighted draws. Tests
// pass a seeded source to make runs reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(engine *Engine) {
		engine.rng = rng
	}
}

// WithClock replaces the time source, letting tests move through cycle
// boundaries without sleeping.
func WithClock(clock func() time.Time) Option {
	return func(engine *Engine) {
		engine.clock = clock
	}
}

// WithoutMinimumGuarantee disables the rebalancing pass that tops up
// roommates left without a chore after allocation.
func WithoutMinimumGuarantee() Option {
	return func(engine *Engine) {
		engine.minimumGuarantee = false
	}
}

func New(
	roommateRepo repository.RoommateRepository,
	choreRepo repository.ChoreRepository,
	assignmentRepo repository.AssignmentRepository,
	scheduleRepo repository.ScheduleStateRepository,
	options ...Option,
) *Engine {
	engine := &Engine{
		roommateRepo:     roommateRepo,
		choreRepo:        choreRepo,
		assignmentRepo:   assignmentRepo,
		scheduleRepo:     scheduleRepo,
		rng:              rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		clock:            time.Now,
		minimumGuarantee: true,
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// AssignChores runs one full scheduling cycle: reset the point ledger
// if a new cycle has started, work out which chores are due, hand them
// out, and replace the stored assignment set with the result. An empty
// roster or catalog yields an empty set without error.
func (engine *Engine) AssignChores(ctx context.Context) ([]models.Assignment, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	return engine.run(ctx)
}

// RunIfDue runs a cycle only once the cycle boundary has passed,
// reporting whether a run happened. The background ticker calls this
// instead of AssignChores so the board is not re-dealt mid-cycle.
func (engine *Engine) RunIfDue(ctx context.Context) (bool, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	state, err := engine.scheduleRepo.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("loading schedule state: %w", err)
	}
	if !ShouldStartNewCycle(state, engine.clock()) {
		return false, nil
	}
	if _, err := engine.run(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (engine *Engine) run(ctx context.Context) ([]models.Assignment, error) {
	now := engine.clock()

	roster, err := engine.roommateRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading roommates: %w", err)
	}
	chores, err := engine.choreRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading chores: %w", err)
	}
	if len(roster) == 0 || len(chores) == 0 {
		return []models.Assignment{}, nil
	}

	state, err := engine.scheduleRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading schedule state: %w", err)
	}
	current, err := engine.assignmentRepo.FindCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading current assignments: %w", err)
	}

	sortRosterByID(roster)

	if ShouldStartNewCycle(state, now) {
		for index := range roster {
			roster[index].CurrentCyclePoints = 0
		}
	}

	// The very first run assigns everything so the household starts
	// with a full board; afterwards only due chores are re-dealt.
	var due []models.Chore
	if len(current) == 0 {
		due = chores
	} else {
		for _, chore := range chores {
			if IsChoreDue(chore, state.LastRunDate, now) {
				due = append(due, chore)
			}
		}
	}

	working := newPlan(roster, state, now)
	allocatorFor(len(roster), engine.rng).allocate(working, due)

	if engine.minimumGuarantee {
		EnsureMinimumAssignments(working.assignments, working.roster)
	}

	if err := engine.persist(ctx, working, now); err != nil {
		return nil, err
	}
	if working.assignments == nil {
		return []models.Assignment{}, nil
	}
	return working.assignments, nil
}

func (engine *Engine) persist(ctx context.Context, working *plan, now time.Time) error {
	for _, roommate := range working.roster {
		if err := engine.roommateRepo.UpdatePoints(ctx, roommate.ID, roommate.CurrentCyclePoints); err != nil {
			return fmt.Errorf("saving roommate points: %w", err)
		}
	}
	for choreID, roommateID := range working.touched {
		if err := engine.scheduleRepo.SetPredefinedState(ctx, choreID, roommateID); err != nil {
			return fmt.Errorf("saving rotation state: %w", err)
		}
	}
	if err := engine.scheduleRepo.SetGlobalRotation(ctx, working.rotation); err != nil {
		return fmt.Errorf("saving global rotation: %w", err)
	}
	if err := engine.scheduleRepo.SetLastRunDate(ctx, now); err != nil {
		return fmt.Errorf("saving last run date: %w", err)
	}
	if err := engine.assignmentRepo.ReplaceCurrent(ctx, working.assignments); err != nil {
		return fmt.Errorf("saving assignments: %w", err)
	}
	return nil
}

// AssignChore hands a single chore out immediately, outside the normal
// cycle. Predefined chores advance their own per-chore rotation; random
// chores go through the weighted draw and charge the chore's points to
// the pick. Any existing assignment for the chore is replaced.
func (engine *Engine) AssignChore(ctx context.Context, choreID int64) (models.Assignment, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	now := engine.clock()

	chore, err := engine.choreRepo.FindByID(ctx, choreID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Assignment{}, ErrChoreNotFound
		}
		return models.Assignment{}, fmt.Errorf("loading chore: %w", err)
	}

	roster, err := engine.roommateRepo.FindAll(ctx)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("loading roommates: %w", err)
	}
	if len(roster) == 0 {
		return models.Assignment{}, ErrNoRoommates
	}
	sortRosterByID(roster)

	var chosen models.Roommate
	if chore.Type == models.ChoreTypePredefined {
		state, err := engine.scheduleRepo.Get(ctx)
		if err != nil {
			return models.Assignment{}, fmt.Errorf("loading schedule state: %w", err)
		}
		chosen = NextInRotation(roster, state.PredefinedChoreStates, chore.ID)
		if err := engine.scheduleRepo.SetPredefinedState(ctx, chore.ID, chosen.ID); err != nil {
			return models.Assignment{}, fmt.Errorf("saving rotation state: %w", err)
		}
	} else {
		chosen = SelectWeighted(roster, engine.rng)
		if err := engine.roommateRepo.UpdatePoints(ctx, chosen.ID, chosen.CurrentCyclePoints+chore.Points); err != nil {
			return models.Assignment{}, fmt.Errorf("saving roommate points: %w", err)
		}
	}

	assignment := models.Assignment{
		ID:           uuid.New().String(),
		ChoreID:      chore.ID,
		ChoreName:    chore.Name,
		RoommateID:   chosen.ID,
		RoommateName: chosen.Name,
		AssignedDate: now,
		DueDate:      DueDate(chore.Frequency, now),
		Frequency:    chore.Frequency,
		Type:         chore.Type,
		Points:       chore.Points,
	}

	current, err := engine.assignmentRepo.FindCurrent(ctx)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("loading current assignments: %w", err)
	}
	replacement := make([]models.Assignment, 0, len(current)+1)
	for _, existing := range current {
		if existing.ChoreID != chore.ID {
			replacement = append(replacement, existing)
		}
	}
	replacement = append(replacement, assignment)
	if err := engine.assignmentRepo.ReplaceCurrent(ctx, replacement); err != nil {
		return models.Assignment{}, fmt.Errorf("saving assignments: %w", err)
	}

	return assignment, nil
}

// AssignmentsByRoommate groups the stored assignment set by roommate
// name, a convenience view for boards and feeds.
func (engine *Engine) AssignmentsByRoommate(ctx context.Context) (map[string][]models.Assignment, error) {
	current, err := engine.assignmentRepo.FindCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading current assignments: %w", err)
	}

	grouped := make(map[string][]models.Assignment)
	for _, assignment := range current {
		grouped[assignment.RoommateName] = append(grouped[assignment.RoommateName], assignment)
	}
	return grouped, nil
}

func sortRosterByID(roster []models.Roommate) {
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
}
