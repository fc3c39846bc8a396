package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ah91648/roomie-roster-sub000/internal/config"
	"github.com/ah91648/roomie-roster-sub000/internal/middleware"
	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/ah91648/roomie-roster-sub000/internal/services"
	"github.com/ah91648/roomie-roster-sub000/internal/testutil"
)

func requestWithRoommate(request *http.Request, roommate models.Roommate) *http.Request {
	ctx := context.WithValue(request.Context(), middleware.RoommateContextKey, roommate)
	return request.WithContext(ctx)
}

func setupAuthHandler(t *testing.T) (*AuthHandler, repository.RoommateRepository) {
	t.Helper()
	database := testutil.NewTestDatabase(t)
	roommateRepo := repository.NewRoommateRepository(database)

	authService, err := services.NewAuthService(context.Background(),
		config.Config{SessionSecret: "test-secret"}, roommateRepo)
	if err != nil {
		t.Fatalf("creating auth service: %v", err)
	}
	return NewAuthHandler(authService), roommateRepo
}

func TestDevLogin_SetsSessionCookie(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	body := strings.NewReader(`{"email": "alice@example.com", "name": "alice"}`)
	request := httptest.NewRequest(http.MethodPost, "/auth/dev-login", body)
	recorder := httptest.NewRecorder()
	handler.DevLogin(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var sessionCookie *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "session" {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Error("expected a session cookie to be set")
	}
}

func TestDevLogin_RequiresEmail(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	request := httptest.NewRequest(http.MethodPost, "/auth/dev-login", strings.NewReader(`{}`))
	recorder := httptest.NewRecorder()
	handler.DevLogin(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
}

func TestLogin_UnavailableWithoutOIDC(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	request := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	recorder := httptest.NewRecorder()
	handler.Login(recorder, request)

	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", recorder.Code)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	request := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	recorder := httptest.NewRecorder()
	handler.Logout(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recorder.Code)
	}
	cleared := false
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "session" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be expired")
	}
}

func TestMe_ReturnsCurrentRoommate(t *testing.T) {
	handler, roommateRepo := setupAuthHandler(t)

	roommate, err := roommateRepo.Create(context.Background(), models.Roommate{
		Name: "alice", Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	request = requestWithRoommate(request, roommate)
	recorder := httptest.NewRecorder()
	handler.Me(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"alice"`) {
		t.Errorf("expected roommate name in response, got %s", recorder.Body.String())
	}
}
