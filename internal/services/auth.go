package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ah91648/roomie-roster-sub000/internal/config"
	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

type AuthService struct {
	oauthConfig  *oauth2.Config
	oidcVerifier *oidc.IDTokenVerifier
	secureCookie *securecookie.SecureCookie
	roommateRepo repository.RoommateRepository
}

type SessionData struct {
	RoommateID int64 `json:"roommate_id"`
}

func NewAuthService(ctx context.Context, cfg config.Config, roommateRepo repository.RoommateRepository) (*AuthService, error) {
	if cfg.OIDCIssuer == "" {
		slog.Warn("OIDC not configured, falling back to dev login")
		return &AuthService{
			secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
			roommateRepo: roommateRepo,
		}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("creating OIDC provider: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	return &AuthService{
		oauthConfig:  oauthConfig,
		oidcVerifier: verifier,
		secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
		roommateRepo: roommateRepo,
	}, nil
}

func (service *AuthService) OIDCConfigured() bool {
	return service.oauthConfig != nil
}

func (service *AuthService) LoginURL(state string) string {
	if service.oauthConfig == nil {
		return ""
	}
	return service.oauthConfig.AuthCodeURL(state)
}

func (service *AuthService) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func (service *AuthService) HandleCallback(ctx context.Context, code string) (models.Roommate, error) {
	if service.oauthConfig == nil {
		return models.Roommate{}, errors.New("OIDC not configured")
	}

	token, err := service.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("exchanging code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return models.Roommate{}, errors.New("no id_token in response")
	}

	idToken, err := service.oidcVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("verifying id token: %w", err)
	}

	var claims struct {
		Subject           string `json:"sub"`
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return models.Roommate{}, fmt.Errorf("parsing claims: %w", err)
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.PreferredUsername
	}
	if displayName == "" {
		displayName = claims.Email
	}

	return service.provisionRoommate(ctx, claims.Subject, claims.Email, displayName)
}

// provisionRoommate maps an OIDC identity onto the roster. A subject match
// signs straight in; an email match links the identity to a roommate that
// was added by hand before their first login; anyone else gets a fresh
// roommate, with the very first one becoming the household admin.
func (service *AuthService) provisionRoommate(ctx context.Context, subject, email, name string) (models.Roommate, error) {
	existing, err := service.roommateRepo.FindByOIDCSubject(ctx, subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.Roommate{}, fmt.Errorf("looking up roommate: %w", err)
	}

	if email != "" {
		byEmail, err := service.roommateRepo.FindByEmail(ctx, email)
		if err == nil {
			if err := service.roommateRepo.LinkOIDCSubject(ctx, byEmail.ID, subject); err != nil {
				return models.Roommate{}, fmt.Errorf("linking roommate: %w", err)
			}
			slog.Info("linked OIDC identity to roommate", "id", byEmail.ID, "name", byEmail.Name)
			byEmail.OIDCSubject = subject
			return byEmail, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return models.Roommate{}, fmt.Errorf("looking up roommate by email: %w", err)
		}
	}

	count, err := service.roommateRepo.Count(ctx)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("counting roommates: %w", err)
	}

	role := models.RoleMember
	if count == 0 {
		role = models.RoleAdmin
	}

	created, err := service.roommateRepo.Create(ctx, models.Roommate{
		OIDCSubject: subject,
		Email:       email,
		Name:        name,
		Role:        role,
	})
	if err != nil {
		return models.Roommate{}, fmt.Errorf("creating roommate: %w", err)
	}

	slog.Info("provisioned new roommate", "id", created.ID, "name", created.Name, "role", created.Role)
	return created, nil
}

// DevLogin signs a roommate in by email, provisioning them if they do not
// exist yet. It only works while OIDC is unconfigured, so a deployment can
// never be downgraded to it by accident.
func (service *AuthService) DevLogin(ctx context.Context, email, name string) (models.Roommate, error) {
	if service.OIDCConfigured() {
		return models.Roommate{}, errors.New("dev login disabled when OIDC is configured")
	}

	roommate, err := service.roommateRepo.FindByEmail(ctx, email)
	if err == nil {
		return roommate, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.Roommate{}, fmt.Errorf("finding roommate for dev login: %w", err)
	}

	count, err := service.roommateRepo.Count(ctx)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("counting roommates: %w", err)
	}
	role := models.RoleMember
	if count == 0 {
		role = models.RoleAdmin
	}
	if name == "" {
		name = email
	}

	created, err := service.roommateRepo.Create(ctx, models.Roommate{Email: email, Name: name, Role: role})
	if err != nil {
		return models.Roommate{}, fmt.Errorf("creating dev roommate: %w", err)
	}
	slog.Info("provisioned dev roommate", "id", created.ID, "name", created.Name, "role", created.Role)
	return created, nil
}

func (service *AuthService) SetSession(w http.ResponseWriter, roommateID int64) error {
	data := SessionData{RoommateID: roommateID}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode("session", string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 30,
	})
	return nil
}

func (service *AuthService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie("session")
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode("session", cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	return session, nil
}

func (service *AuthService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (service *AuthService) GetCurrentRoommate(r *http.Request) (models.Roommate, error) {
	session, err := service.GetSession(r)
	if err != nil {
		return models.Roommate{}, err
	}

	roommate, err := service.roommateRepo.FindByID(r.Context(), session.RoommateID)
	if err != nil {
		return models.Roommate{}, fmt.Errorf("finding roommate: %w", err)
	}
	return roommate, nil
}
