package engine

import (
	rand "math/rand/v2"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
)

// SelectWeighted draws one roommate at random, favoring whoever has the
// fewest cycle points. Each weight is (highest point total + 1) minus
// the roommate's own points, so even the most loaded member keeps a
// weight of one and stays in the draw. The roster must be non-empty.
func SelectWeighted(roster []models.Roommate, rng *rand.Rand) models.Roommate {
	maxPoints := 0
	for _, roommate := range roster {
		if roommate.CurrentCyclePoints > maxPoints {
			maxPoints = roommate.CurrentCyclePoints
		}
	}

	total := 0
	weights := make([]int, len(roster))
	for index, roommate := range roster {
		weights[index] = maxPoints + 1 - roommate.CurrentCyclePoints
		total += weights[index]
	}

	draw := rng.IntN(total)
	for index, weight := range weights {
		draw -= weight
		if draw < 0 {
			return roster[index]
		}
	}
	return roster[len(roster)-1]
}
