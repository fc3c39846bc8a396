package engine

import (
	rand "math/rand/v2"
	"sort"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/google/uuid"
)

// equitableThreshold is the household size at which the scheduler
// switches from the legacy per-chore loop to the two-phase equitable
// spread.
const equitableThreshold = 4

// plan accumulates the working state of one scheduler run. Allocators
// mutate the plan in memory; nothing reaches storage until the engine
// persists the finished plan.
type plan struct {
	now         time.Time
	roster      []models.Roommate
	byID        map[int64]int
	counts      map[int64]int
	states      map[int64]int64
	touched     map[int64]int64
	rotation    int
	assignments []models.Assignment
}

func newPlan(roster []models.Roommate, state models.ScheduleState, now time.Time) *plan {
	working := &plan{
		now:      now,
		roster:   roster,
		byID:     make(map[int64]int, len(roster)),
		counts:   make(map[int64]int, len(roster)),
		states:   make(map[int64]int64, len(state.PredefinedChoreStates)),
		touched:  make(map[int64]int64),
		rotation: state.GlobalPredefinedRotation,
	}
	for index, roommate := range roster {
		working.byID[roommate.ID] = index
	}
	for choreID, roommateID := range state.PredefinedChoreStates {
		working.states[choreID] = roommateID
	}
	return working
}

func (working *plan) assign(chore models.Chore, roommate models.Roommate) {
	working.assignments = append(working.assignments, models.Assignment{
		ID:           uuid.New().String(),
		ChoreID:      chore.ID,
		ChoreName:    chore.Name,
		RoommateID:   roommate.ID,
		RoommateName: roommate.Name,
		AssignedDate: working.now,
		DueDate:      DueDate(chore.Frequency, working.now),
		Frequency:    chore.Frequency,
		Type:         chore.Type,
		Points:       chore.Points,
	})
	working.counts[roommate.ID]++
}

func (working *plan) addPoints(roommateID int64, points int) {
	if index, ok := working.byID[roommateID]; ok {
		working.roster[index].CurrentCyclePoints += points
	}
}

func (working *plan) recordRotation(choreID int64, roommateID int64) {
	working.states[choreID] = roommateID
	working.touched[choreID] = roommateID
}

// leastLoaded picks the roommate with the fewest assignments so far
// this run, breaking ties by lowest points and then by id order. The
// final fallback to the global minimum-points roommate keeps the pick
// total even if the count scan somehow comes up empty.
func (working *plan) leastLoaded() models.Roommate {
	minCount := -1
	for _, roommate := range working.roster {
		if minCount < 0 || working.counts[roommate.ID] < minCount {
			minCount = working.counts[roommate.ID]
		}
	}

	var best *models.Roommate
	for index := range working.roster {
		roommate := &working.roster[index]
		if working.counts[roommate.ID] != minCount {
			continue
		}
		if best == nil || roommate.CurrentCyclePoints < best.CurrentCyclePoints {
			best = roommate
		}
	}
	if best == nil {
		for index := range working.roster {
			roommate := &working.roster[index]
			if best == nil || roommate.CurrentCyclePoints < best.CurrentCyclePoints {
				best = roommate
			}
		}
	}
	return *best
}

// allocator turns the due-chore set into assignments on the plan. The
// two implementations share one output contract but give different
// fairness guarantees.
type allocator interface {
	allocate(working *plan, due []models.Chore)
}

func allocatorFor(rosterSize int, rng *rand.Rand) allocator {
	if rosterSize >= equitableThreshold {
		return equitableAllocator{}
	}
	return legacyAllocator{rng: rng}
}

// legacyAllocator is the original per-chore loop used for small
// households: predefined chores walk the shared rotation cursor, random
// chores go through the weighted draw.
type legacyAllocator struct {
	rng *rand.Rand
}

func (alloc legacyAllocator) allocate(working *plan, due []models.Chore) {
	for _, chore := range due {
		var chosen models.Roommate
		if chore.Type == models.ChoreTypePredefined {
			chosen, working.rotation = NextInGlobalRotation(working.roster, working.rotation, working.counts)
			working.recordRotation(chore.ID, chosen.ID)
		} else {
			chosen = SelectWeighted(working.roster, alloc.rng)
			working.addPoints(chosen.ID, chore.Points)
		}
		working.assign(chore, chosen)
	}
}

// equitableAllocator spreads the due set over households of four or
// more in two phases. Phase one sorts chores by points and roommates by
// points and pairs them index for index, so everyone is guaranteed a
// chore whenever there are at least as many chores as roommates, with
// the cheap chores topping up the least-loaded members. Phase two hands
// each remaining chore to whoever currently holds the fewest.
type equitableAllocator struct{}

func (equitableAllocator) allocate(working *plan, due []models.Chore) {
	chores := make([]models.Chore, len(due))
	copy(chores, due)
	sort.SliceStable(chores, func(i, j int) bool {
		if chores[i].Points != chores[j].Points {
			return chores[i].Points < chores[j].Points
		}
		return chores[i].ID < chores[j].ID
	})

	order := make([]models.Roommate, len(working.roster))
	copy(order, working.roster)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].CurrentCyclePoints != order[j].CurrentCyclePoints {
			return order[i].CurrentCyclePoints < order[j].CurrentCyclePoints
		}
		return order[i].ID < order[j].ID
	})

	guaranteed := len(chores)
	if len(order) < guaranteed {
		guaranteed = len(order)
	}

	for index := 0; index < guaranteed; index++ {
		working.handOut(chores[index], order[index])
	}
	for _, chore := range chores[guaranteed:] {
		working.handOut(chore, working.leastLoaded())
	}
}

func (working *plan) handOut(chore models.Chore, roommate models.Roommate) {
	working.assign(chore, roommate)
	working.addPoints(roommate.ID, chore.Points)
	if chore.Type == models.ChoreTypePredefined {
		working.recordRotation(chore.ID, roommate.ID)
	}
}
