package handlers

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/ah91648/roomie-roster-sub000/internal/repository"
)

type LeaderboardHandler struct {
	roommateRepo   repository.RoommateRepository
	assignmentRepo repository.AssignmentRepository
}

func NewLeaderboardHandler(roommateRepo repository.RoommateRepository, assignmentRepo repository.AssignmentRepository) *LeaderboardHandler {
	return &LeaderboardHandler{
		roommateRepo:   roommateRepo,
		assignmentRepo: assignmentRepo,
	}
}

type LeaderboardEntry struct {
	RoommateID  int64  `json:"roommate_id"`
	Name        string `json:"name"`
	Points      int    `json:"points"`
	Assignments int    `json:"assignments"`
}

// Standings ranks the household by current cycle points. The scheduler hands
// heavier chores to whoever is lowest here, so the top of the board is also
// who has pulled the most weight this cycle.
func (handler *LeaderboardHandler) Standings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roommates, err := handler.roommateRepo.FindAll(ctx)
	if err != nil {
		slog.Error("finding roommates", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load leaderboard"})
		return
	}

	assignments, err := handler.assignmentRepo.FindCurrent(ctx)
	if err != nil {
		slog.Error("finding assignments", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load leaderboard"})
		return
	}

	counts := make(map[int64]int, len(roommates))
	for _, assignment := range assignments {
		counts[assignment.RoommateID]++
	}

	entries := make([]LeaderboardEntry, 0, len(roommates))
	for _, roommate := range roommates {
		entries = append(entries, LeaderboardEntry{
			RoommateID:  roommate.ID,
			Name:        roommate.Name,
			Points:      roommate.CurrentCyclePoints,
			Assignments: counts[roommate.ID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})

	writeJSON(w, http.StatusOK, entries)
}
