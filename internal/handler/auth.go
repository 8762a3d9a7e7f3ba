package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/goaltrack/goaltrack/internal/config"
	"github.com/goaltrack/goaltrack/internal/ctxkeys"
	"github.com/goaltrack/goaltrack/internal/model"
	"github.com/goaltrack/goaltrack/internal/service"
)

const oauthStateCookie = "oauth_state"

type oauthProfile struct {
	Email string
	Name  string
}

type oauthProvider struct {
	name    string
	config  *oauth2.Config
	profile func(ctx context.Context, client *http.Client) (*oauthProfile, error)
}

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	providers   map[string]*oauthProvider
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, cfg *config.Config) *AuthHandler {
	h := &AuthHandler{
		authService: authService,
		userService: userService,
		providers:   map[string]*oauthProvider{},
	}

	if cfg.GoogleClientID != "" {
		h.providers["google"] = &oauthProvider{
			name: "google",
			config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.AppURL + "/auth/google/callback",
				Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
				Endpoint:     google.Endpoint,
			},
			profile: googleProfile,
		}
	}
	if cfg.GitHubClientID != "" {
		h.providers["github"] = &oauthProvider{
			name: "github",
			config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				RedirectURL:  cfg.AppURL + "/auth/github/callback",
				Scopes:       []string{"user:email"},
				Endpoint:     github.Endpoint,
			},
			profile: githubProfile,
		}
	}

	return h
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	h.writeAccount(w, r, http.StatusCreated, user.ID)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		slog.Warn("password login failed", "error", err)
		writeError(w, r, err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	slog.Info("user logged in with password", "user_id", user.ID)
	h.writeAccount(w, r, http.StatusOK, user.ID)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeAccount(w, r, http.StatusOK, ctxkeys.UserID(r.Context()))
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	userID := ctxkeys.UserID(r.Context())
	if err := h.userService.UpdateName(r.Context(), userID, in.Name); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeAccount(w, r, http.StatusOK, userID)
}

// CSRF hands the double-submit token to API clients.
func (h *AuthHandler) CSRF(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": ctxkeys.CSRFToken(r.Context())})
}

// OAuthStart redirects to the provider consent screen.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[r.PathValue("provider")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown OAuth provider"})
		return
	}

	state := generateOAuthState()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, provider.config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[r.PathValue("provider")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown OAuth provider"})
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("oauth state validation failed", "error", err, "provider", provider.name)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "OAuth authentication failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider.name)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "OAuth authentication failed"})
		return
	}

	token, err := provider.config.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth token exchange failed", "error", err, "provider", provider.name)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "OAuth authentication failed"})
		return
	}

	profile, err := provider.profile(r.Context(), provider.config.Client(r.Context(), token))
	if err != nil {
		slog.Error("failed to get oauth profile", "error", err, "provider", provider.name)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "OAuth authentication failed"})
		return
	}

	user, err := h.authService.AuthenticateOAuth(r.Context(), profile.Email, profile.Name, provider.name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to generate JWT: %w", err))
		return false
	}
	h.authService.SetJWTCookie(w, token, expiry)
	return true
}

func (h *AuthHandler) writeAccount(w http.ResponseWriter, r *http.Request, status int, userID string) {
	account, err := h.userService.Account(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, account)
}

func generateOAuthState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func googleProfile(ctx context.Context, client *http.Client) (*oauthProfile, error) {
	var info struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return nil, err
	}
	if info.Email == "" || !info.VerifiedEmail {
		return nil, errors.New("google account has no verified email")
	}
	return &oauthProfile{Email: info.Email, Name: info.Name}, nil
}

func githubProfile(ctx context.Context, client *http.Client) (*oauthProfile, error) {
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	if err := getJSON(ctx, client, "https://api.github.com/user", &info); err != nil {
		return nil, err
	}

	profile := &oauthProfile{Email: info.Email, Name: info.Name}
	if profile.Name == "" {
		profile.Name = info.Login
	}

	// private addresses are only listed on /user/emails
	if profile.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, "https://api.github.com/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				profile.Email = e.Email
				break
			}
		}
	}

	if profile.Email == "" {
		return nil, errors.New("github account has no verified primary email")
	}
	return profile, nil
}
