package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ah91648/roomie-roster-sub000/internal/engine"
	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
)

type ChoreHandler struct {
	choreRepo repository.ChoreRepository
	scheduler *engine.Engine
}

func NewChoreHandler(choreRepo repository.ChoreRepository, scheduler *engine.Engine) *ChoreHandler {
	return &ChoreHandler{choreRepo: choreRepo, scheduler: scheduler}
}

func (handler *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := handler.choreRepo.FindAll(r.Context())
	if err != nil {
		slog.Error("finding chores", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load chores"})
		return
	}
	if chores == nil {
		chores = []models.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (handler *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	chore, err := handler.choreRepo.FindByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}
	writeJSON(w, http.StatusOK, chore)
}

type choreRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	Type        string `json:"type"`
	Points      *int   `json:"points"`
}

func validFrequency(frequency models.Frequency) bool {
	switch frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyBiWeekly:
		return true
	}
	return false
}

func validChoreType(choreType models.ChoreType) bool {
	return choreType == models.ChoreTypePredefined || choreType == models.ChoreTypeRandom
}

func (handler *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request choreRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if request.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if request.Frequency != "" && !validFrequency(models.Frequency(request.Frequency)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid frequency"})
		return
	}
	if request.Type != "" && !validChoreType(models.ChoreType(request.Type)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type"})
		return
	}

	chore := models.Chore{
		Name:        request.Name,
		Description: request.Description,
		Frequency:   models.Frequency(request.Frequency),
		Type:        models.ChoreType(request.Type),
	}
	if request.Points != nil {
		if *request.Points < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "points must not be negative"})
			return
		}
		chore.Points = *request.Points
	}

	created, err := handler.choreRepo.Create(r.Context(), chore)
	if err != nil {
		slog.Error("creating chore", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create chore"})
		return
	}

	// New chores go on the board right away rather than waiting for the
	// next cycle. An empty roster is fine; the next full run catches up.
	if _, err := handler.scheduler.AssignChore(r.Context(), created.ID); err != nil && !errors.Is(err, engine.ErrNoRoommates) {
		slog.Warn("assigning new chore", "chore", created.Name, "error", err)
	}

	writeJSON(w, http.StatusCreated, created)
}

func (handler *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	chore, err := handler.choreRepo.FindByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}

	var request choreRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if request.Name != "" {
		chore.Name = request.Name
	}
	if request.Description != "" {
		chore.Description = request.Description
	}
	if request.Frequency != "" {
		frequency := models.Frequency(request.Frequency)
		if !validFrequency(frequency) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid frequency"})
			return
		}
		chore.Frequency = frequency
	}
	if request.Type != "" {
		choreType := models.ChoreType(request.Type)
		if !validChoreType(choreType) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type"})
			return
		}
		chore.Type = choreType
	}
	if request.Points != nil {
		if *request.Points < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "points must not be negative"})
			return
		}
		chore.Points = *request.Points
	}

	if err := handler.choreRepo.Update(r.Context(), chore); err != nil {
		slog.Error("updating chore", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update chore"})
		return
	}
	writeJSON(w, http.StatusOK, chore)
}

func (handler *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if _, err := handler.choreRepo.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
			return
		}
		slog.Error("finding chore", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load chore"})
		return
	}

	if err := handler.choreRepo.Delete(r.Context(), id); err != nil {
		slog.Error("deleting chore", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete chore"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
