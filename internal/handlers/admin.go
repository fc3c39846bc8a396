package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ah91648/roomie-roster-sub000/internal/middleware"
	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
)

type AdminHandler struct {
	roommateRepo repository.RoommateRepository
	settingsRepo repository.SettingsRepository
}

func NewAdminHandler(roommateRepo repository.RoommateRepository, settingsRepo repository.SettingsRepository) *AdminHandler {
	return &AdminHandler{
		roommateRepo: roommateRepo,
		settingsRepo: settingsRepo,
	}
}

func (handler *AdminHandler) PromoteRoommate(w http.ResponseWriter, r *http.Request) {
	handler.setRole(w, r, models.RoleAdmin)
}

func (handler *AdminHandler) DemoteRoommate(w http.ResponseWriter, r *http.Request) {
	handler.setRole(w, r, models.RoleMember)
}

func (handler *AdminHandler) setRole(w http.ResponseWriter, r *http.Request, role models.Role) {
	ctx := r.Context()
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	// Admins cannot demote themselves; the household always keeps at
	// least one.
	if role == models.RoleMember && middleware.GetRoommate(ctx).ID == id {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot demote yourself"})
		return
	}

	roommate, err := handler.roommateRepo.FindByID(ctx, id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "roommate not found"})
		return
	}

	roommate.Role = role
	if err := handler.roommateRepo.Update(ctx, roommate); err != nil {
		slog.Error("updating roommate role", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update role"})
		return
	}
	writeJSON(w, http.StatusOK, roommate)
}

func (handler *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	name, err := handler.settingsRepo.Get(r.Context(), repository.SettingHouseholdName)
	if err != nil {
		slog.Error("loading settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load settings"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"household_name": name})
}

func (handler *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var request struct {
		HouseholdName string `json:"household_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if request.HouseholdName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "household_name is required"})
		return
	}

	if err := handler.settingsRepo.Set(r.Context(), repository.SettingHouseholdName, request.HouseholdName); err != nil {
		slog.Error("saving settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"household_name": request.HouseholdName})
}
