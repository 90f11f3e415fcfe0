// internal/auth/users.go
//
// User accounts table access.
// Usernames and emails are unique case-insensitively; lookups compare lower-cased values
// and the lower(...) unique indexes back that up when two signups race.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/addkelime/kelime-server/internal/db"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ErrUserNotFound is returned by the lookups when no row matches.
var ErrUserNotFound = errors.New("auth: user not found")

type UserStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func NewUserStore(conn *sql.DB, driver string) *UserStore {
	return &UserStore{db: conn, sb: db.Builder(driver)}
}

var userColumns = []string{"id", "email", "username", "password_hash", "created_at"}

func (s *UserStore) Create(ctx context.Context, u *User) error {
	_, err := s.sb.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		if taken := takenError(err); taken != nil {
			return taken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// pgUniqueViolation is the postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// takenError maps a unique-constraint failure to ErrEmailTaken or
// ErrUsernameTaken, and returns nil for any other error.
func takenError(err error) error {
	var (
		constraint string
		liteErr    sqlite3.Error
		pgErr      *pgconn.PgError
	)
	switch {
	case errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		// "UNIQUE constraint failed: users.email" or "... index 'users_email_lower_key'"
		constraint = liteErr.Error()
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		constraint = pgErr.ConstraintName
	default:
		return nil
	}
	switch {
	case strings.Contains(constraint, "email"):
		return fmt.Errorf("%w: %w", ErrEmailTaken, err)
	case strings.Contains(constraint, "username"):
		return fmt.Errorf("%w: %w", ErrUsernameTaken, err)
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, sq.Eq{"id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, sq.Expr("lower(email) = lower(?)", email))
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findOne(ctx, sq.Expr("lower(username) = lower(?)", username))
}

func (s *UserStore) findOne(ctx context.Context, where sq.Sqlizer) (*User, error) {
	var u User
	err := s.sb.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
