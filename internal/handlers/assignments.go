package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ah91648/roomie-roster-sub000/internal/engine"
	"github.com/ah91648/roomie-roster-sub000/internal/middleware"
	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
)

type AssignmentHandler struct {
	assignmentRepo repository.AssignmentRepository
	scheduler      *engine.Engine
}

func NewAssignmentHandler(assignmentRepo repository.AssignmentRepository, scheduler *engine.Engine) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentRepo: assignmentRepo,
		scheduler:      scheduler,
	}
}

func (handler *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := handler.assignmentRepo.FindCurrent(r.Context())
	if err != nil {
		slog.Error("finding assignments", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load assignments"})
		return
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Mine lists the signed-in roommate's slice of the current board.
func (handler *AssignmentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	roommate := middleware.GetRoommate(r.Context())
	assignments, err := handler.assignmentRepo.FindByRoommateID(r.Context(), roommate.ID)
	if err != nil {
		slog.Error("finding assignments", "roommate", roommate.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load assignments"})
		return
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (handler *AssignmentHandler) ByRoommate(w http.ResponseWriter, r *http.Request) {
	grouped, err := handler.scheduler.AssignmentsByRoommate(r.Context())
	if err != nil {
		slog.Error("grouping assignments", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load assignments"})
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

// Run triggers a full scheduling pass and returns the fresh assignment set.
// The engine itself decides what is due, so calling this twice in a row is
// harmless.
func (handler *AssignmentHandler) Run(w http.ResponseWriter, r *http.Request) {
	assignments, err := handler.scheduler.AssignChores(r.Context())
	if err != nil {
		slog.Error("running scheduler", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to assign chores"})
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (handler *AssignmentHandler) AssignOne(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	assignment, err := handler.scheduler.AssignChore(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrChoreNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		case errors.Is(err, engine.ErrNoRoommates):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no roommates to assign to"})
		default:
			slog.Error("assigning chore", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to assign chore"})
		}
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}
