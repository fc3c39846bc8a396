package engine

import (
	"github.com/ah91648/roomie-roster-sub000/internal/models"
)

// EnsureMinimumAssignments moves assignments from roommates holding two
// or more to roommates holding none, until everyone has at least one or
// no donor remains. Assignments are retargeted in place; the total
// count never changes. Runs only when the set is large enough for
// everyone to get one, since otherwise zeros are unavoidable.
func EnsureMinimumAssignments(assignments []models.Assignment, roster []models.Roommate) {
	if len(assignments) < len(roster) {
		return
	}

	counts := make(map[int64]int, len(roster))
	for _, assignment := range assignments {
		counts[assignment.RoommateID]++
	}

	for _, roommate := range roster {
		if counts[roommate.ID] > 0 {
			continue
		}
		for index := range assignments {
			if counts[assignments[index].RoommateID] < 2 {
				continue
			}
			counts[assignments[index].RoommateID]--
			assignments[index].RoommateID = roommate.ID
			assignments[index].RoommateName = roommate.Name
			counts[roommate.ID]++
			break
		}
	}
}
