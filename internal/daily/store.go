// internal/daily/store.go
//
// Persistence for finished daily games.
// Responsibilities:
//   - One row per (user, mode, day) in game_results; a second save is rejected.
//   - Lookups for "did I already play", "what was my result" and the per-day ordering
//     the leaderboards rank by (won first, then fastest, then earliest saved).
//
// Queries are built with squirrel so the same code runs on sqlite3 and postgres.

package daily

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/addkelime/kelime-server/internal/db"
)

// ErrAlreadyPlayed is returned when a result for the same user, mode and day exists.
var ErrAlreadyPlayed = errors.New("daily: already played this mode today")

// Result is one finished daily game.
type Result struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Mode      int       `json:"gameMode"`
	Date      string    `json:"gameDate"`
	Won       bool      `json:"won"`
	Attempts  int       `json:"attempts"`
	TimeMs    int64     `json:"timeMs"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

// NewStore wraps db; driver selects the placeholder format.
func NewStore(conn *sql.DB, driver string) *Store {
	return &Store{db: conn, sb: db.Builder(driver), now: time.Now}
}

var resultColumns = []string{
	"r.id", "r.user_id", "COALESCE(u.username, '')", "r.game_mode", "r.game_date",
	"r.won", "r.attempts", "r.time_ms", "r.created_at",
}

// SaveResult inserts r, filling ID and CreatedAt when empty.
// It returns ErrAlreadyPlayed if the user already has a result for that mode and day.
func (s *Store) SaveResult(ctx context.Context, r *Result) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}

	res, err := s.sb.Insert("game_results").
		Columns("id", "user_id", "game_mode", "game_date", "won", "attempts", "time_ms", "created_at").
		Values(r.ID, r.UserID, r.Mode, r.Date, r.Won, r.Attempts, r.TimeMs, r.CreatedAt).
		Suffix("ON CONFLICT (user_id, game_mode, game_date) DO NOTHING").
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	if n == 0 {
		return ErrAlreadyPlayed
	}
	return nil
}

// AlreadyPlayed reports whether userID has a result for mode on date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID string, mode int, date string) (bool, error) {
	var cnt int
	err := s.sb.Select("COUNT(1)").
		From("game_results").
		Where(sq.Eq{"user_id": userID, "game_mode": mode, "game_date": date}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&cnt)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// TodayResult returns the user's result for mode on date, or nil if there is none.
func (s *Store) TodayResult(ctx context.Context, userID string, mode int, date string) (*Result, error) {
	rows, err := s.selectResults().
		Where(sq.Eq{"r.user_id": userID, "r.game_mode": mode, "r.game_date": date}).
		Limit(1).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	out, err := scanResults(rows)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// DayResults returns every result for mode on date in ranking order.
func (s *Store) DayResults(ctx context.Context, mode int, date string) ([]Result, error) {
	rows, err := s.selectResults().
		Where(sq.Eq{"r.game_mode": mode, "r.game_date": date}).
		OrderBy("r.won DESC", "r.time_ms ASC", "r.created_at ASC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanResults(rows)
}

// RangeResults returns results for mode with from <= date <= to, grouped by date and
// in ranking order within each date. Empty bounds are open.
func (s *Store) RangeResults(ctx context.Context, mode int, from, to string) ([]Result, error) {
	q := s.selectResults().Where(sq.Eq{"r.game_mode": mode})
	if from != "" {
		q = q.Where(sq.GtOrEq{"r.game_date": from})
	}
	if to != "" {
		q = q.Where(sq.LtOrEq{"r.game_date": to})
	}
	rows, err := q.
		OrderBy("r.game_date ASC", "r.won DESC", "r.time_ms ASC", "r.created_at ASC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanResults(rows)
}

func (s *Store) selectResults() sq.SelectBuilder {
	return s.sb.Select(resultColumns...).
		From("game_results r").
		LeftJoin("users u ON u.id = r.user_id")
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	defer rows.Close()
	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.Mode, &r.Date,
			&r.Won, &r.Attempts, &r.TimeMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
