package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	ical "github.com/arran4/golang-ical"
)

// ICalHandler publishes the current assignment board as a calendar feed, one
// all-day event per assignment on its due date. Calendar apps poll the feed
// URL, so it authenticates with a query-string token instead of a session.
type ICalHandler struct {
	assignmentRepo repository.AssignmentRepository
	tokenRepo      repository.APITokenRepository
	settingsRepo   repository.SettingsRepository
	feedToken      string
}

func NewICalHandler(
	assignmentRepo repository.AssignmentRepository,
	tokenRepo repository.APITokenRepository,
	settingsRepo repository.SettingsRepository,
	feedToken string,
) *ICalHandler {
	return &ICalHandler{
		assignmentRepo: assignmentRepo,
		tokenRepo:      tokenRepo,
		settingsRepo:   settingsRepo,
		feedToken:      feedToken,
	}
}

func (handler *ICalHandler) Feed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	authorized := handler.feedToken != "" && token == handler.feedToken
	if !authorized {
		tokenHash := repository.HashToken(token)
		if found, err := handler.tokenRepo.FindByTokenHash(r.Context(), tokenHash); err == nil &&
			found.Scope == "ical" &&
			(found.ExpiresAt == nil || found.ExpiresAt.After(time.Now())) {
			authorized = true
		}
	}
	if !authorized {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()

	assignments, err := handler.assignmentRepo.FindCurrent(ctx)
	if err != nil {
		slog.Error("finding assignments for feed", "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	calendarName := "RoomieRoster"
	if householdName, err := handler.settingsRepo.Get(ctx, repository.SettingHouseholdName); err == nil && householdName != "" {
		calendarName = householdName
	}

	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId(fmt.Sprintf("-//%s//Chore Schedule//EN", calendarName))
	calendar.SetCalscale("GREGORIAN")
	calendar.SetXWRCalName(calendarName + " Chores")

	for _, assignment := range assignments {
		event := calendar.AddEvent(fmt.Sprintf("assignment-%s@roomie-roster", assignment.ID))
		event.SetDtStampTime(assignment.AssignedDate.UTC())
		event.SetAllDayStartAt(assignment.DueDate)
		event.SetAllDayEndAt(assignment.DueDate.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s: %s", assignment.RoommateName, assignment.ChoreName))
		event.SetDescription(fmt.Sprintf("%s is due on the %s rotation (%d points)",
			assignment.ChoreName, assignment.Frequency, assignment.Points))
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=chores.ics")
	w.Write([]byte(calendar.Serialize()))
}
