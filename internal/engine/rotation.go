package engine

import (
	"github.com/ah91648/roomie-roster-sub000/internal/models"
)

// NextInRotation picks who takes a predefined chore next. The roster
// must be sorted by id and non-empty. With no recorded previous
// assignee, or one who has since left the household, the rotation
// restarts at the first roommate.
func NextInRotation(roster []models.Roommate, states map[int64]int64, choreID int64) models.Roommate {
	last, ok := states[choreID]
	if !ok {
		return roster[0]
	}
	for index, roommate := range roster {
		if roommate.ID == last {
			return roster[(index+1)%len(roster)]
		}
	}
	return roster[0]
}

// NextInGlobalRotation advances the shared cursor used when a batch of
// predefined chores is handed out in one run. Anyone already holding
// two or more assignments this run is passed over so a single person is
// not front-loaded; if everyone is at the limit, the roommate under the
// cursor takes the chore anyway. Returns the pick and the cursor value
// to carry forward.
func NextInGlobalRotation(roster []models.Roommate, cursor int, counts map[int64]int) (models.Roommate, int) {
	// The roster may have shrunk since the cursor was persisted.
	cursor %= len(roster)

	for offset := 0; offset < len(roster); offset++ {
		candidate := roster[(cursor+offset)%len(roster)]
		if counts[candidate.ID] < 2 {
			return candidate, (cursor + offset + 1) % len(roster)
		}
	}
	return roster[cursor], (cursor + 1) % len(roster)
}
