package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/ah91648/roomie-roster-sub000/internal/services"
)

type contextKey string

const RoommateContextKey contextKey = "roommate"

func RequireAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roommate, err := authService.GetCurrentRoommate(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), RoommateContextKey, roommate)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roommate := GetRoommate(r.Context())
		if roommate.Role != models.RoleAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// APITokenAuth authenticates requests with a bearer token minted through the
// admin token endpoints. Tokens are looked up by hash, so a database leak
// never exposes a usable credential.
func APITokenAuth(tokenRepo repository.APITokenRepository, roommateRepo repository.RoommateRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			tokenHash := repository.HashToken(tokenString)

			token, err := tokenRepo.FindByTokenHash(r.Context(), tokenHash)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Calendar-feed tokens only open the feed, never the API.
			if token.Scope != "" && token.Scope != "api" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			roommate, err := roommateRepo.FindByID(r.Context(), token.CreatedByRoommateID)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), RoommateContextKey, roommate)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRoommate(ctx context.Context) models.Roommate {
	roommate, _ := ctx.Value(RoommateContextKey).(models.Roommate)
	return roommate
}
