package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"
)

// Identity is the authenticated caller, carried in the request context.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
}

type contextKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity placed by Optional or Require.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// Optional attaches an Identity when the request carries a valid token and
// passes anonymous requests through untouched.
func (s *Service) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := s.identify(r); ok {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects requests without a valid token for an existing user.
func (s *Service) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.identify(r)
		if !ok {
			unauthorized(w)
			return
		}
		if _, err := s.users.FindByID(r.Context(), id.UserID); err != nil {
			hlog.FromRequest(r).Debug().Err(err).Str("userId", id.UserID).Msg("token for unknown user")
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (s *Service) identify(r *http.Request) (Identity, bool) {
	token := s.tokenFromRequest(r)
	if token == "" {
		return Identity{}, false
	}
	claims, err := Verify(s.cfg.Secret, token)
	if err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("rejected token")
		return Identity{}, false
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, true
}

// tokenFromRequest reads "Authorization: Bearer <token>", then the auth cookie.
func (s *Service) tokenFromRequest(r *http.Request) string {
	if a := r.Header.Get("Authorization"); len(a) > 7 && strings.EqualFold(a[:7], "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Giriş yapmalısınız"}`))
}

// SetCookie stores the session token in an HttpOnly cookie.
func (s *Service) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, s.cookie(token, exp, 0))
}

// ClearCookie expires the auth cookie.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", time.Time{}, -1))
}

func (s *Service) cookie(value string, exp time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookie {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	}
}
