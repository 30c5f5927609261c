package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcarver/folio/internal/common"
	"github.com/jcarver/folio/internal/models"
)

// --- JWT helpers ---

// signToken creates a signed HMAC-SHA256 JWT for the given user.
func signToken(user *models.InternalUser, config *common.Config) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.UserID,
		"email":    user.Email,
		"name":     user.Name,
		"provider": user.Provider,
		"iss":      "folio-server",
		"iat":      now.Unix(),
		"exp":      now.Add(config.Auth.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Auth.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func userResponse(user *models.InternalUser) map[string]interface{} {
	return map[string]interface{}{
		"user_id":  user.UserID,
		"email":    user.Email,
		"name":     user.Name,
		"provider": user.Provider,
	}
}

func (s *Server) writeTokenResponse(w http.ResponseWriter, user *models.InternalUser) {
	token, err := signToken(user, s.app.Config)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign token")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_in": int(s.app.Config.Auth.GetTokenExpiry().Seconds()),
		"user":       userResponse(user),
	})
}

// --- Handlers ---

// handleAuthRegister handles POST /api/v1/auth/register.
func (s *Server) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Password) < 8 {
		WriteError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	store := s.app.Storage.InternalStore()
	if _, err := store.GetUserByEmail(r.Context(), req.Email); err == nil {
		WriteError(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := &models.InternalUser{
		UserID:       newUserID(req.Email),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Provider:     "password",
		Role:         "user",
		CreatedAt:    time.Now(),
	}
	if err := store.SaveUser(r.Context(), user); err != nil {
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Failed to create user")
		WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	s.logger.Info().Str("user_id", user.UserID).Msg("User registered")
	s.writeTokenResponse(w, user)
}

// handleAuthLogin handles POST /api/v1/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	store := s.app.Storage.InternalStore()
	user, err := store.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user.PasswordHash == "" {
		// Same response for unknown email and OAuth-only accounts.
		WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	s.writeTokenResponse(w, user)
}

// handleAuthGoogle handles POST /api/v1/auth/google: exchanges an auth code
// for Google user info and returns a first-party JWT.
func (s *Server) handleAuthGoogle(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Code        string `json:"code"`
		RedirectURI string `json:"redirect_uri"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		WriteError(w, http.StatusBadRequest, "code is required")
		return
	}

	cfg := s.app.Config.Auth.Google
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		WriteError(w, http.StatusInternalServerError, "Google OAuth not configured")
		return
	}

	// Exchange code for token
	tokenResp, err := http.PostForm("https://oauth2.googleapis.com/token", url.Values{
		"code":          {req.Code},
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"redirect_uri":  {req.RedirectURI},
		"grant_type":    {"authorization_code"},
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Google token exchange failed")
		WriteError(w, http.StatusBadGateway, "failed to exchange code with Google")
		return
	}
	defer tokenResp.Body.Close()

	var tokenData struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(tokenResp.Body).Decode(&tokenData); err != nil || tokenData.AccessToken == "" {
		errMsg := "failed to get access token from Google"
		if tokenData.Error != "" {
			errMsg = "Google error: " + tokenData.Error
		}
		WriteError(w, http.StatusBadGateway, errMsg)
		return
	}

	// Get user info
	infoReq, _ := http.NewRequestWithContext(r.Context(), http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	infoReq.Header.Set("Authorization", "Bearer "+tokenData.AccessToken)
	infoResp, err := http.DefaultClient.Do(infoReq)
	if err != nil {
		s.logger.Error().Err(err).Msg("Google userinfo request failed")
		WriteError(w, http.StatusBadGateway, "failed to get user info from Google")
		return
	}
	defer infoResp.Body.Close()

	var userInfo struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(infoResp.Body).Decode(&userInfo); err != nil || userInfo.ID == "" {
		WriteError(w, http.StatusBadGateway, "failed to parse Google user info")
		return
	}

	user := s.findOrCreateOAuthUser(r.Context(), "google_"+userInfo.ID, userInfo.Email, userInfo.Name, "google")
	if user == nil {
		WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	s.writeTokenResponse(w, user)
}

// handleAuthRefresh handles POST /api/v1/auth/refresh: re-issues a fresh
// token for the authenticated user.
func (s *Server) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc, ok := requireAuth(w, r)
	if !ok {
		return
	}
	user, err := s.app.Storage.InternalStore().GetUser(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "user not found")
		return
	}
	s.writeTokenResponse(w, user)
}

// findOrCreateOAuthUser returns the existing account for an OAuth identity,
// creating it on first login. An account previously registered with the same
// email is linked rather than duplicated.
func (s *Server) findOrCreateOAuthUser(ctx context.Context, userID, email, name, provider string) *models.InternalUser {
	store := s.app.Storage.InternalStore()

	if user, err := store.GetUser(ctx, userID); err == nil {
		return user
	}
	if email != "" {
		if user, err := store.GetUserByEmail(ctx, email); err == nil {
			return user
		}
	}

	user := &models.InternalUser{
		UserID:    userID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      name,
		Provider:  provider,
		Role:      "user",
		CreatedAt: time.Now(),
	}
	if err := store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create OAuth user")
		return nil
	}
	s.logger.Info().Str("user_id", userID).Str("provider", provider).Msg("OAuth user created")
	return user
}

// newUserID derives a stable user ID from the email local part plus a random
// suffix, keeping IDs readable in logs.
func newUserID(email string) string {
	local := email
	if idx := strings.Index(email, "@"); idx > 0 {
		local = email[:idx]
	}
	local = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(local))
	return local + "-" + uuidShort()
}
