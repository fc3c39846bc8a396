package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/go-chi/chi/v5"
)

type RoommateHandler struct {
	roommateRepo repository.RoommateRepository
}

func NewRoommateHandler(roommateRepo repository.RoommateRepository) *RoommateHandler {
	return &RoommateHandler{roommateRepo: roommateRepo}
}

func (handler *RoommateHandler) List(w http.ResponseWriter, r *http.Request) {
	roommates, err := handler.roommateRepo.FindAll(r.Context())
	if err != nil {
		slog.Error("finding roommates", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load roommates"})
		return
	}
	if roommates == nil {
		roommates = []models.Roommate{}
	}
	writeJSON(w, http.StatusOK, roommates)
}

func (handler *RoommateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	roommate, err := handler.roommateRepo.FindByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "roommate not found"})
		return
	}
	writeJSON(w, http.StatusOK, roommate)
}

type roommateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (handler *RoommateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request roommateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if request.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	role := models.Role(request.Role)
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	created, err := handler.roommateRepo.Create(r.Context(), models.Roommate{
		Name:  request.Name,
		Email: request.Email,
		Role:  role,
	})
	if err != nil {
		slog.Error("creating roommate", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create roommate"})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *RoommateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	roommate, err := handler.roommateRepo.FindByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "roommate not found"})
		return
	}

	var request roommateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if request.Name != "" {
		roommate.Name = request.Name
	}
	if request.Email != "" {
		roommate.Email = request.Email
	}
	if request.Role != "" {
		role := models.Role(request.Role)
		if role != models.RoleAdmin && role != models.RoleMember {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
			return
		}
		roommate.Role = role
	}

	if err := handler.roommateRepo.Update(r.Context(), roommate); err != nil {
		slog.Error("updating roommate", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update roommate"})
		return
	}
	writeJSON(w, http.StatusOK, roommate)
}

func (handler *RoommateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if _, err := handler.roommateRepo.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "roommate not found"})
			return
		}
		slog.Error("finding roommate", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load roommate"})
		return
	}

	if err := handler.roommateRepo.Delete(r.Context(), id); err != nil {
		slog.Error("deleting roommate", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete roommate"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
