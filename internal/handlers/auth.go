package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/calummcrae/showspin/internal/database"
	"github.com/calummcrae/showspin/internal/middleware"
	"github.com/calummcrae/showspin/internal/models"
	"github.com/calummcrae/showspin/internal/services"
	"github.com/calummcrae/showspin/internal/validation"
)

const stateCookieName = "oauth_state"

// AuthHandler handles registration, sign-in and password flows
type AuthHandler struct {
	userService    *services.UserService
	sessionStore   *database.SessionStore
	resetTokens    *database.ResetTokenStore
	authMiddleware *middleware.AuthMiddleware
	googleConfig   *oauth2.Config
	githubConfig   *oauth2.Config
	siteURL        string
	logger         *log.Logger
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	SiteURL            string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userService *services.UserService,
	sessionStore *database.SessionStore,
	resetTokens *database.ResetTokenStore,
	authMiddleware *middleware.AuthMiddleware,
	cfg AuthConfig,
	logger *log.Logger,
) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		sessionStore:   sessionStore,
		resetTokens:    resetTokens,
		authMiddleware: authMiddleware,
		siteURL:        cfg.SiteURL,
		logger:         logger,
		googleConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/google/callback", cfg.SiteURL),
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		githubConfig: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/github/callback", cfg.SiteURL),
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

// startSession creates a session for the user and sets the cookie.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sessionID, err := h.sessionStore.GenerateSessionID()
	if err != nil {
		return err
	}
	if err := h.sessionStore.Set(r.Context(), sessionID, user.ID); err != nil {
		return err
	}
	h.authMiddleware.SetSessionCookie(w, sessionID)
	return nil
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	fieldErrors := map[string]string{}
	if res := validation.Name(input.FirstName, "First name"); !res.Valid {
		fieldErrors["first_name"] = res.Error
	}
	if res := validation.Name(input.LastName, "Last name"); !res.Valid {
		fieldErrors["last_name"] = res.Error
	}
	if res := validation.Email(input.Email); !res.Valid {
		fieldErrors["email"] = res.Error
	}
	if res := validation.Password(input.Password); !res.Valid {
		fieldErrors["password"] = res.Error
	}
	if len(fieldErrors) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"fieldErrors": fieldErrors})
		return
	}

	user, err := h.userService.Register(
		r.Context(),
		validation.Sanitize(input.Email, 254),
		validation.Sanitize(input.FirstName, 50),
		validation.Sanitize(input.LastName, 50),
		input.Password,
	)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			http.Error(w, `{"error":"An account with this email already exists"}`, http.StatusConflict)
			return
		}
		h.logger.Printf("Failed to register user: %v", err)
		http.Error(w, `{"error":"Something went wrong. Please try again."}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"user": user})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	fieldErrors := map[string]string{}
	if res := validation.Email(input.Email); !res.Valid {
		fieldErrors["email"] = res.Error
	}
	if res := validation.Password(input.Password); !res.Valid {
		fieldErrors["password"] = res.Error
	}
	if len(fieldErrors) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"fieldErrors": fieldErrors})
		return
	}

	user, err := h.userService.Authenticate(r.Context(), validation.Sanitize(input.Email, 254), input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			http.Error(w, `{"error":"Invalid email or password"}`, http.StatusUnauthorized)
			return
		}
		h.logger.Printf("Failed to authenticate user: %v", err)
		http.Error(w, `{"error":"Something went wrong. Please try again."}`, http.StatusInternalServerError)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.logger.Printf("Failed to create session: %v", err)
		http.Error(w, `{"error":"Failed to create session"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user": user})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.authMiddleware.CookieName()); err == nil {
		h.sessionStore.Delete(r.Context(), cookie.Value)
	}
	h.authMiddleware.ClearSessionCookie(w)

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user": user})
}

// ResetPassword handles POST /api/auth/reset-password. The response is
// identical whether or not the account exists, to prevent enumeration.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if res := validation.Email(input.Email); !res.Valid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"fieldErrors": map[string]string{"email": res.Error}})
		return
	}

	user, err := h.userService.FindByEmail(r.Context(), validation.Sanitize(input.Email, 254))
	if err == nil {
		token, err := h.resetTokens.Create(r.Context(), user.ID)
		if err != nil {
			h.logger.Printf("Failed to create reset token: %v", err)
		} else {
			// Mail delivery is handled outside this service; the reset
			// link is logged for the operator.
			h.logger.Printf("Password reset link for %s: %s/update-password?token=%s", user.Email, h.siteURL, token)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": "If an account exists with that email, you will receive a password reset link.",
	})
}

// UpdatePassword handles POST /api/auth/update-password. Accepts either a
// reset token or an authenticated session.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token           string `json:"token"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if res := validation.Password(input.Password); !res.Valid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"fieldErrors": map[string]string{"password": res.Error}})
		return
	}
	if input.Password != input.ConfirmPassword {
		http.Error(w, `{"error":"Passwords do not match"}`, http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if input.Token != "" {
		var err error
		userID, err = h.resetTokens.Consume(r.Context(), input.Token)
		if err != nil {
			http.Error(w, `{"error":"Invalid or expired reset link"}`, http.StatusBadRequest)
			return
		}
	} else if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, input.Password); err != nil {
		h.logger.Printf("Failed to update password: %v", err)
		http.Error(w, `{"error":"Failed to update password. Please try again."}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"message": "Password updated"})
}

// oauthConfig maps a path's provider segment to its oauth2 config.
func (h *AuthHandler) oauthConfig(provider string) (*oauth2.Config, models.Provider, bool) {
	switch provider {
	case "google":
		return h.googleConfig, models.ProviderGoogle, true
	case "github":
		return h.githubConfig, models.ProviderGitHub, true
	default:
		return nil, "", false
	}
}

// OAuthLogin handles GET /auth/{provider}/login
func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	cfg, _, ok := h.oauthConfig(r.PathValue("provider"))
	if !ok {
		http.Error(w, `{"error":"Unknown provider"}`, http.StatusNotFound)
		return
	}

	state, err := h.sessionStore.GenerateSessionID()
	if err != nil {
		h.logger.Printf("Failed to generate state token: %v", err)
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	// The state round-trips through a short-lived cookie and is checked
	// in the callback.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((5 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallback handles GET /auth/{provider}/callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	cfg, provider, ok := h.oauthConfig(r.PathValue("provider"))
	if !ok {
		http.Error(w, `{"error":"Unknown provider"}`, http.StatusNotFound)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, `{"error":"Invalid state"}`, http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/auth", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, `{"error":"No code provided"}`, http.StatusBadRequest)
		return
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Printf("Failed to exchange code: %v", err)
		http.Error(w, `{"error":"Failed to exchange code"}`, http.StatusInternalServerError)
		return
	}

	identity, err := h.fetchIdentity(r, cfg, provider, token)
	if err != nil {
		h.logger.Printf("Failed to get user info: %v", err)
		http.Error(w, `{"error":"Failed to get user info"}`, http.StatusInternalServerError)
		return
	}

	user, err := h.userService.FindOrCreateOAuth(
		r.Context(),
		provider,
		identity.providerID,
		identity.email,
		identity.firstName,
		identity.lastName,
	)
	if err != nil {
		h.logger.Printf("Failed to find or create user: %v", err)
		http.Error(w, `{"error":"Failed to create user"}`, http.StatusInternalServerError)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.logger.Printf("Failed to create session: %v", err)
		http.Error(w, `{"error":"Failed to create session"}`, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.siteURL, http.StatusSeeOther)
}

type oauthIdentity struct {
	providerID string
	email      string
	firstName  string
	lastName   string
}

// fetchIdentity retrieves the signed-in identity from the provider's
// userinfo endpoint.
func (h *AuthHandler) fetchIdentity(r *http.Request, cfg *oauth2.Config, provider models.Provider, token *oauth2.Token) (*oauthIdentity, error) {
	client := cfg.Client(r.Context(), token)

	if provider == models.ProviderGoogle {
		resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var info struct {
			ID         string `json:"id"`
			Email      string `json:"email"`
			GivenName  string `json:"given_name"`
			FamilyName string `json:"family_name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, err
		}

		return &oauthIdentity{
			providerID: info.ID,
			email:      info.Email,
			firstName:  info.GivenName,
			lastName:   info.FamilyName,
		}, nil
	}

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}

	// GitHub hides the email on private profiles; fall back to the
	// primary address from the emails endpoint.
	if info.Email == "" {
		if emailResp, err := client.Get("https://api.github.com/user/emails"); err == nil {
			defer emailResp.Body.Close()
			var emails []struct {
				Email   string `json:"email"`
				Primary bool   `json:"primary"`
			}
			if err := json.NewDecoder(emailResp.Body).Decode(&emails); err == nil {
				for _, e := range emails {
					if e.Primary {
						info.Email = e.Email
						break
					}
				}
			}
		}
	}

	if info.Name == "" {
		info.Name = info.Login
	}
	firstName, lastName, _ := strings.Cut(info.Name, " ")

	return &oauthIdentity{
		providerID: fmt.Sprintf("%d", info.ID),
		email:      info.Email,
		firstName:  firstName,
		lastName:   lastName,
	}, nil
}
