package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/middleware"
	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/go-chi/chi/v5"
)

// APIHandler serves the token-authenticated surface used by external
// integrations. It is read-only apart from token management, which is
// session-scoped and admin-gated by the router.
type APIHandler struct {
	roommateRepo   repository.RoommateRepository
	choreRepo      repository.ChoreRepository
	assignmentRepo repository.AssignmentRepository
	tokenRepo      repository.APITokenRepository
	settingsRepo   repository.SettingsRepository
}

func NewAPIHandler(
	roommateRepo repository.RoommateRepository,
	choreRepo repository.ChoreRepository,
	assignmentRepo repository.AssignmentRepository,
	tokenRepo repository.APITokenRepository,
	settingsRepo repository.SettingsRepository,
) *APIHandler {
	return &APIHandler{
		roommateRepo:   roommateRepo,
		choreRepo:      choreRepo,
		assignmentRepo: assignmentRepo,
		tokenRepo:      tokenRepo,
		settingsRepo:   settingsRepo,
	}
}

func (handler *APIHandler) ListRoommates(w http.ResponseWriter, r *http.Request) {
	roommates, err := handler.roommateRepo.FindAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load roommates"})
		return
	}
	if roommates == nil {
		roommates = []models.Roommate{}
	}
	writeJSON(w, http.StatusOK, roommates)
}

func (handler *APIHandler) ListChores(w http.ResponseWriter, r *http.Request) {
	chores, err := handler.choreRepo.FindAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load chores"})
		return
	}
	if chores == nil {
		chores = []models.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (handler *APIHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := handler.assignmentRepo.FindCurrent(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load assignments"})
		return
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Stats summarises the household for dashboard tiles and home automation
// sensors: who holds how many chores, and how loaded the board is overall.
func (handler *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roommates, err := handler.roommateRepo.FindAll(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}
	assignments, err := handler.assignmentRepo.FindCurrent(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	overdue := 0
	now := time.Now()
	counts := make(map[int64]int, len(roommates))
	for _, assignment := range assignments {
		counts[assignment.RoommateID]++
		if assignment.DueDate.Before(now) {
			overdue++
		}
	}

	perRoommate := make(map[string]map[string]int, len(roommates))
	for _, roommate := range roommates {
		perRoommate[roommate.Name] = map[string]int{
			"assignments": counts[roommate.ID],
			"points":      roommate.CurrentCyclePoints,
		}
	}

	stats := map[string]interface{}{
		"roommates":           len(roommates),
		"assignments":         len(assignments),
		"assignments_overdue": overdue,
		"per_roommate":        perRoommate,
	}
	if name, err := handler.settingsRepo.Get(ctx, repository.SettingHouseholdName); err == nil {
		stats["household_name"] = name
	}
	writeJSON(w, http.StatusOK, stats)
}

func (handler *APIHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := handler.tokenRepo.FindAll(r.Context())
	if err != nil {
		slog.Error("finding tokens", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load tokens"})
		return
	}
	if tokens == nil {
		tokens = []models.APIToken{}
	}
	writeJSON(w, http.StatusOK, tokens)
}

type createTokenRequest struct {
	Name          string `json:"name"`
	Scope         string `json:"scope"`
	ExpiresInDays int    `json:"expires_in_days"`
}

func (handler *APIHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roommate := middleware.GetRoommate(ctx)

	var request createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if request.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	scope := request.Scope
	if scope == "" {
		scope = "api"
	}
	if scope != "api" && scope != "ical" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scope"})
		return
	}

	token := models.APIToken{
		Name:                request.Name,
		Scope:               scope,
		CreatedByRoommateID: roommate.ID,
	}
	if request.ExpiresInDays > 0 {
		expiresAt := time.Now().AddDate(0, 0, request.ExpiresInDays)
		token.ExpiresAt = &expiresAt
	}

	rawToken := generateToken()
	token.TokenHash = repository.HashToken(rawToken)

	created, err := handler.tokenRepo.Create(ctx, token)
	if err != nil {
		slog.Error("creating token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create token"})
		return
	}

	// The raw token appears in this response and nowhere else; only its
	// hash is stored.
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    created.ID,
		"name":  created.Name,
		"scope": created.Scope,
		"token": rawToken,
	})
}

func (handler *APIHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := handler.tokenRepo.Delete(ctx, id); err != nil {
		slog.Error("deleting token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete token"})
		return
	}

	w.WriteHeader(http.StatusOK)
}

func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
