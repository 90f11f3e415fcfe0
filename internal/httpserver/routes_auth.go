// internal/httpserver/routes_auth.go
//
// Account endpoints.
//   - POST /auth/register {email, password, username} → 201, sets the auth cookie
//   - POST /auth/login    {email, password}           → 200, sets the auth cookie
//   - POST /auth/logout                               → 204, clears the cookie
//   - GET  /auth/me                                   → the signed-in user (requires auth)
//
// The token is also returned in the body for clients that prefer Authorization: Bearer.

package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/addkelime/kelime-server/internal/auth"
)

func (s *Server) mountAuth(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.Auth.Require).Get("/me", s.handleMe)
	})
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionRes struct {
	User      *auth.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := s.Auth.Register(r.Context(), req.Email, req.Password, req.Username)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", "Bu e-posta zaten kayıtlı")
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken", "Bu kullanıcı adı alınmış")
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("register")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	hlog.FromRequest(r).Info().Str("userId", sess.User.ID).Str("username", sess.User.Username).Msg("user registered")
	s.Auth.SetCookie(w, sess.Token, sess.ExpiresAt)
	writeJSON(w, http.StatusCreated, sessionRes{User: sess.User, Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "E-posta veya şifre hatalı")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	s.Auth.SetCookie(w, sess.Token, sess.ExpiresAt)
	writeJSON(w, http.StatusOK, sessionRes{User: sess.User, Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.FromContext(r.Context())
	u, err := s.Auth.Me(r.Context(), me)
	if errors.Is(err, auth.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("me")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
