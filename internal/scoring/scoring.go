// Package scoring turns stored daily results into points and leaderboards.
//
// Within a day, players are ordered won first, then by time, then by who saved
// first. The player at rank r earns max(1, mode-r+1) points for a win and nothing
// for a loss. Monthly and all-time boards sum those daily points per player.
package scoring

import (
	"context"
	"sort"

	"github.com/addkelime/kelime-server/internal/daily"
)

// DefaultUsername is shown for results whose user has no profile.
const DefaultUsername = "Oyuncu"

// CalculatePoints returns the points for finishing at rank (1-based) in mode.
func CalculatePoints(rank, mode int, won bool) int {
	if !won {
		return 0
	}
	return max(1, mode-rank+1)
}

// Entry is one row of a daily leaderboard.
type Entry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Won      bool   `json:"won"`
	Attempts int    `json:"attempts"`
	TimeMs   int64  `json:"timeMs"`
	Points   int    `json:"points"`
}

// Total is one row of an aggregated (monthly or all-time) leaderboard.
type Total struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	TotalPoints int    `json:"totalPoints"`
}

// RankDay ranks one day's results, which must already be in day order.
func RankDay(results []daily.Result, mode int) []Entry {
	out := make([]Entry, 0, len(results))
	for i, r := range results {
		out = append(out, Entry{
			Rank:     i + 1,
			UserID:   r.UserID,
			Username: displayName(r.Username),
			Won:      r.Won,
			Attempts: r.Attempts,
			TimeMs:   r.TimeMs,
			Points:   CalculatePoints(i+1, mode, r.Won),
		})
	}
	return out
}

// Aggregate sums daily points per user. Results may span several days; within a
// day they must be in day order. Totals are sorted by points, then username.
func Aggregate(results []daily.Result, mode int) []Total {
	rankInDay := make(map[string]int)
	points := make(map[string]int)
	names := make(map[string]string)
	var order []string

	for _, r := range results {
		rankInDay[r.Date]++
		if _, seen := points[r.UserID]; !seen {
			order = append(order, r.UserID)
			names[r.UserID] = displayName(r.Username)
		}
		points[r.UserID] += CalculatePoints(rankInDay[r.Date], mode, r.Won)
	}

	out := make([]Total, 0, len(order))
	for _, id := range order {
		out = append(out, Total{UserID: id, Username: names[id], TotalPoints: points[id]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func displayName(name string) string {
	if name == "" {
		return DefaultUsername
	}
	return name
}

// ResultReader is the part of daily.Store the leaderboards read from.
type ResultReader interface {
	DayResults(ctx context.Context, mode int, date string) ([]daily.Result, error)
	RangeResults(ctx context.Context, mode int, from, to string) ([]daily.Result, error)
}

type Service struct {
	results ResultReader
}

func NewService(results ResultReader) *Service {
	return &Service{results: results}
}

// Daily returns the top limit entries for mode on date. limit <= 0 means all.
func (s *Service) Daily(ctx context.Context, mode int, date string, limit int) ([]Entry, error) {
	rs, err := s.results.DayResults(ctx, mode, date)
	if err != nil {
		return nil, err
	}
	return truncate(RankDay(rs, mode), limit), nil
}

// Monthly aggregates the days of month ("YYYY-MM").
func (s *Service) Monthly(ctx context.Context, mode int, month string, limit int) ([]Total, error) {
	from, to, err := daily.MonthRange(month)
	if err != nil {
		return nil, err
	}
	rs, err := s.results.RangeResults(ctx, mode, from, to)
	if err != nil {
		return nil, err
	}
	return truncate(Aggregate(rs, mode), limit), nil
}

// AllTime aggregates every stored day.
func (s *Service) AllTime(ctx context.Context, mode int, limit int) ([]Total, error) {
	rs, err := s.results.RangeResults(ctx, mode, "", "")
	if err != nil {
		return nil, err
	}
	return truncate(Aggregate(rs, mode), limit), nil
}

// PlayerRank returns userID's 1-based rank on date, or 0 if they have no result.
func (s *Service) PlayerRank(ctx context.Context, mode int, date, userID string) (int, error) {
	rs, err := s.results.DayResults(ctx, mode, date)
	if err != nil {
		return 0, err
	}
	for i, r := range rs {
		if r.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
