// internal/auth/service.go
//
// Account registration and login.
// Responsibilities:
//   - Validate sign-up input (email, username, password).
//   - Hash passwords with bcrypt and verify them on login.
//   - Issue JWTs carrying the user id and username.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrUsernameTaken      = errors.New("auth: username taken")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
)

type Config struct {
	Secret       []byte
	TTL          time.Duration
	CookieName   string
	SecureCookie bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	users *UserStore
	cfg   Config
	now   func() time.Time
}

func NewService(users *UserStore, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "kelime_token"
	}
	return &Service{users: users, cfg: cfg, now: time.Now}
}

// Session is what a successful register or login hands back.
type Session struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Register creates the account and signs it in.
func (s *Service) Register(ctx context.Context, email, password, username string) (*Session, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if err := validateSignup(email, password, username); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Login checks the password for email. Unknown emails and wrong passwords
// both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Me loads the account behind an identity.
func (s *Service) Me(ctx context.Context, id Identity) (*User, error) {
	return s.users.FindByID(ctx, id.UserID)
}

func (s *Service) issue(u *User) (*Session, error) {
	token, exp, err := Sign(s.cfg.Secret, u.ID, u.Username, s.cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

func validateSignup(email, password, username string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(username); n < 3 || n > 24 {
		return fmt.Errorf("%w: username must be 3-24 characters", ErrInvalidInput)
	}
	for _, r := range username {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("%w: username may contain letters, digits and underscore only", ErrInvalidInput)
		}
	}
	if len(password) < 6 || len(password) > 72 {
		return fmt.Errorf("%w: password must be 6-72 characters", ErrInvalidInput)
	}
	return nil
}
