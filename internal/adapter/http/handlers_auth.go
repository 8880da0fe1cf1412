// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"moods/internal/app"
)

const sessionMaxAge = 86400

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	token, err := s.authSvc.Login(r.Context(), req.Username, req.Password, r.UserAgent(), r.RemoteAddr)
	if errors.Is(err, app.ErrInvalidCredentials) {
		s.log.Warn().Str("username", req.Username).Str("ip", r.RemoteAddr).Msg("login rejected")
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("login failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		_ = s.authSvc.Logout(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled":     s.oidcConfig.Enabled,
		"deletes_enabled": s.moods.DeletesEnabled(),
	})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oidcConfig.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != state.Value {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.oidcConfig.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.log.Error().Err(err).Msg("sso token exchange failed")
		http.Error(w, "failed to exchange token", http.StatusInternalServerError)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "no id_token", http.StatusInternalServerError)
		return
	}

	idToken, err := s.oidcConfig.Provider.Verifier(&oidc.Config{ClientID: s.oidcConfig.OAuth2Config.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		s.log.Error().Err(err).Msg("sso id token rejected")
		http.Error(w, "failed to verify token", http.StatusInternalServerError)
		return
	}

	var claims struct {
		Email string `json:"email"`
		Sub   string `json:"sub"`
	}
	if err = idToken.Claims(&claims); err != nil {
		http.Error(w, "failed to parse claims", http.StatusInternalServerError)
		return
	}

	identity := claims.Email
	if identity == "" {
		identity = claims.Sub
	}

	sessionToken, err := s.authSvc.LoginWithIdentity(r.Context(), identity, r.UserAgent(), r.RemoteAddr)
	if errors.Is(err, app.ErrInvalidCredentials) {
		s.log.Warn().Str("identity", identity).Msg("sso identity is not the owner")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err != nil {
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, sessionToken)
	http.Redirect(w, r, "/", http.StatusFound)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   sessionMaxAge,
	})
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
