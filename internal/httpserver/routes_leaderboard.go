// internal/httpserver/routes_leaderboard.go
//
// Leaderboards and the caller's own daily result.
//   - GET /leaderboard/daily?mode=5&date=YYYY-MM-DD&limit=10
//   - GET /leaderboard/monthly?mode=5&month=YYYY-MM&limit=10
//   - GET /leaderboard/alltime?mode=5&limit=10
//   - GET /results/today?mode=5            (requires auth)
//
// date and month default to the current puzzle day. limit defaults to 10 and is capped at 100.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/addkelime/kelime-server/internal/auth"
	"github.com/addkelime/kelime-server/internal/daily"
	"github.com/addkelime/kelime-server/internal/scoring"
	"github.com/addkelime/kelime-server/internal/words"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

func (s *Server) mountLeaderboard(r chi.Router) {
	r.Route("/leaderboard", func(r chi.Router) {
		r.Get("/daily", s.handleDailyBoard)
		r.Get("/monthly", s.handleMonthlyBoard)
		r.Get("/alltime", s.handleAllTimeBoard)
	})
	r.With(s.Auth.Require).Get("/results/today", s.handleTodayResult)
}

type dailyBoardRes struct {
	Mode    int             `json:"mode"`
	Date    string          `json:"date"`
	Entries []scoring.Entry `json:"entries"`
}

type totalsBoardRes struct {
	Mode    int             `json:"mode"`
	Month   string          `json:"month,omitempty"`
	Entries []scoring.Total `json:"entries"`
}

func (s *Server) handleDailyBoard(w http.ResponseWriter, r *http.Request) {
	mode := boardMode(r)
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.Clock.Today()
	}
	if !daily.ValidDateKey(date) {
		writeError(w, http.StatusBadRequest, "bad_date", "date must be YYYY-MM-DD")
		return
	}
	entries, err := s.Scores.Daily(r.Context(), mode, date, boardLimit(r))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, dailyBoardRes{Mode: mode, Date: date, Entries: nonNil(entries)})
}

func (s *Server) handleMonthlyBoard(w http.ResponseWriter, r *http.Request) {
	mode := boardMode(r)
	month := r.URL.Query().Get("month")
	if month == "" {
		month = daily.MonthKey(s.Clock.Today())
	}
	if _, _, err := daily.MonthRange(month); err != nil {
		writeError(w, http.StatusBadRequest, "bad_month", "month must be YYYY-MM")
		return
	}
	totals, err := s.Scores.Monthly(r.Context(), mode, month, boardLimit(r))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("monthly leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, totalsBoardRes{Mode: mode, Month: month, Entries: nonNil(totals)})
}

func (s *Server) handleAllTimeBoard(w http.ResponseWriter, r *http.Request) {
	mode := boardMode(r)
	totals, err := s.Scores.AllTime(r.Context(), mode, boardLimit(r))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("all-time leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, totalsBoardRes{Mode: mode, Entries: nonNil(totals)})
}

type todayRes struct {
	Date   string        `json:"date"`
	Played bool          `json:"played"`
	Result *daily.Result `json:"result,omitempty"`
	Rank   int           `json:"rank,omitempty"`
	Points *int          `json:"points,omitempty"`
}

func (s *Server) handleTodayResult(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.FromContext(r.Context())
	mode := boardMode(r)
	date := s.Clock.Today()

	res, err := s.Results.TodayResult(r.Context(), me.UserID, mode, date)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("today's result")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	out := todayRes{Date: date, Played: res != nil, Result: res}
	if res != nil {
		rank, err := s.Scores.PlayerRank(r.Context(), mode, date, me.UserID)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("player rank")
			writeError(w, http.StatusInternalServerError, "db_error", "")
			return
		}
		pts := scoring.CalculatePoints(rank, mode, res.Won)
		out.Rank, out.Points = rank, &pts
	}
	writeJSON(w, http.StatusOK, out)
}

func boardMode(r *http.Request) int {
	return words.NormalizeMode(queryInt(r, "mode", words.DefaultMode))
}

func boardLimit(r *http.Request) int {
	n := queryInt(r, "limit", defaultLimit)
	switch {
	case n <= 0:
		return defaultLimit
	case n > maxLimit:
		return maxLimit
	}
	return n
}

// nonNil keeps empty boards encoding as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
