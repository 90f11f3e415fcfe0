// internal/httpserver/routes_game.go
//
// HTTP routes for playing.
//   - POST /game/new             → start today's game for a mode (or a practice game)
//   - GET  /game/{id}            → current state
//   - POST /game/{id}/letter     → add one letter to the buffer
//   - POST /game/{id}/backspace  → remove the last letter
//   - POST /game/{id}/guess      → submit the buffer (or a whole word)
//   - GET  /game/{id}/keyboard   → letter statuses so far
//
// Sessions live in the session store as snapshots; every handler restores,
// mutates and saves. A signed-in player can finish each mode once per day: the
// finished result is persisted, published to the live feed and ranked.
// Practice games and guests are never persisted.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/addkelime/kelime-server/internal/auth"
	"github.com/addkelime/kelime-server/internal/daily"
	"github.com/addkelime/kelime-server/internal/game"
	"github.com/addkelime/kelime-server/internal/realtime"
	"github.com/addkelime/kelime-server/internal/scoring"
	"github.com/addkelime/kelime-server/internal/store"
	"github.com/addkelime/kelime-server/internal/words"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Get("/{id}", s.handleGetGame)
		r.Post("/{id}/letter", s.handleLetter)
		r.Post("/{id}/backspace", s.handleBackspace)
		r.Post("/{id}/guess", s.handleGuess)
		r.Get("/{id}/keyboard", s.handleKeyboard)
	})
}

// gameView is what players see of a session. The target only appears once the game is over.
type gameView struct {
	ID           string                 `json:"id"`
	Mode         int                    `json:"mode"`
	DateKey      string                 `json:"dateKey,omitempty"`
	Practice     bool                   `json:"practice,omitempty"`
	State        game.State             `json:"state"`
	Guesses      []game.Guess           `json:"guesses"`
	CurrentGuess string                 `json:"currentGuess"`
	Attempts     int                    `json:"attempts"`
	MaxAttempts  int                    `json:"maxAttempts"`
	GameOver     bool                   `json:"gameOver"`
	Won          bool                   `json:"won"`
	TargetWord   string                 `json:"targetWord,omitempty"`
	ElapsedMs    int64                  `json:"elapsedMs"`
	Elapsed      string                 `json:"elapsed"`
	Keyboard     map[string]game.Status `json:"keyboard"`
}

func viewOf(g *game.Session) gameView {
	ms := g.ElapsedMs()
	return gameView{
		ID:           g.ID(),
		Mode:         g.Mode(),
		DateKey:      g.DateKey(),
		Practice:     g.Practice(),
		State:        g.State(),
		Guesses:      g.Guesses(),
		CurrentGuess: g.CurrentGuess(),
		Attempts:     g.Attempts(),
		MaxAttempts:  g.MaxAttempts(),
		GameOver:     g.IsGameOver(),
		Won:          g.Won(),
		TargetWord:   g.TargetWord(),
		ElapsedMs:    ms,
		Elapsed:      game.FormatElapsed(ms),
		Keyboard:     g.Keyboard(),
	}
}

// ----------------------------------------------------------------------------
// POST /game/new

type newGameReq struct {
	Mode     int  `json:"mode"`
	Practice bool `json:"practice"`
}

type alreadyPlayedRes struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Result  *daily.Result `json:"result"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if !decodeJSON(w, r, &req) {
		return
	}
	mode := words.NormalizeMode(req.Mode)
	me, signedIn := auth.FromContext(r.Context())

	g := game.NewSession(s.Dict)
	if req.Practice {
		g.InitializePractice(mode, s.Dict.RandomWord(mode))
	} else {
		date := s.Clock.Today()
		if signedIn {
			prev, err := s.Results.TodayResult(r.Context(), me.UserID, mode, date)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Str("userId", me.UserID).Msg("load today's result")
				writeError(w, http.StatusInternalServerError, "db_error", "")
				return
			}
			if prev != nil {
				writeJSON(w, http.StatusConflict, alreadyPlayedRes{
					Error:   "already_played",
					Message: "Bugün bu modu zaten oynadınız!",
					Result:  prev,
				})
				return
			}
		}
		g.Initialize(mode, date)
	}
	if signedIn {
		g.SetUserID(me.UserID)
	}

	if !s.save(w, r, g) {
		return
	}
	if s.Metrics != nil {
		s.Metrics.Started(mode)
	}
	hlog.FromRequest(r).Info().Str("gameId", g.ID()).Int("mode", mode).Str("date", g.DateKey()).Msg("game started")
	writeJSON(w, http.StatusCreated, viewOf(g))
}

// ----------------------------------------------------------------------------
// GET /game/{id}, /game/{id}/keyboard

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g))
}

func (s *Server) handleKeyboard(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Keyboard())
}

// ----------------------------------------------------------------------------
// POST /game/{id}/letter, /game/{id}/backspace

type letterReq struct {
	Letter string `json:"letter"`
}

type editRes struct {
	Accepted     bool   `json:"accepted"`
	CurrentGuess string `json:"currentGuess"`
}

func (s *Server) handleLetter(w http.ResponseWriter, r *http.Request) {
	var req letterReq
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	accepted := g.AddLetter(req.Letter)
	if accepted && !s.save(w, r, g) {
		return
	}
	writeJSON(w, http.StatusOK, editRes{Accepted: accepted, CurrentGuess: g.CurrentGuess()})
}

func (s *Server) handleBackspace(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	accepted := g.RemoveLetter()
	if accepted && !s.save(w, r, g) {
		return
	}
	writeJSON(w, http.StatusOK, editRes{Accepted: accepted, CurrentGuess: g.CurrentGuess()})
}

// ----------------------------------------------------------------------------
// POST /game/{id}/guess

type guessReq struct {
	// Word, when set, replaces the buffer before submitting.
	Word string `json:"word"`
}

type guessRes struct {
	game.Outcome
	Game gameView `json:"game"`
	// Rank and Points are set when a signed-in player's daily game ended.
	Rank     int  `json:"rank,omitempty"`
	Points   *int `json:"points,omitempty"`
	Recorded bool `json:"recorded"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if !decodeJSON(w, r, &req) {
		return
	}
	g, ok := s.load(w, r)
	if !ok {
		return
	}

	// Rejections are answered without saving, so the stored session is untouched.
	if req.Word != "" && !g.IsGameOver() {
		word := words.Upper(strings.TrimSpace(req.Word))
		switch {
		case utf8.RuneCountInString(word) != g.Mode():
			s.rejectGuess(w, g, game.ErrWrongLength)
			return
		case !words.IsTurkish(word):
			s.rejectGuess(w, g, game.ErrNotInDictionary)
			return
		}
		for g.RemoveLetter() {
		}
		for _, ch := range word {
			g.AddLetter(string(ch))
		}
	}

	out, err := g.SubmitGuess()
	if err != nil {
		s.rejectGuess(w, g, err)
		return
	}
	if !s.save(w, r, g) {
		return
	}
	if s.Metrics != nil {
		s.Metrics.Guess(g.Mode(), "accepted")
	}

	res := guessRes{Outcome: out, Game: viewOf(g)}
	if out.GameOver {
		if s.Metrics != nil {
			s.Metrics.Finished(g.Mode(), out.Won)
		}
		s.finish(r, g, out, &res)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) rejectGuess(w http.ResponseWriter, g *game.Session, err error) {
	var (
		status        int
		code, message string
	)
	switch {
	case errors.Is(err, game.ErrGameOver):
		status, code, message = http.StatusConflict, "game_over", "Oyun bitti!"
	case errors.Is(err, game.ErrWrongLength):
		status, code, message = http.StatusUnprocessableEntity, "wrong_length", fmt.Sprintf("%d harf girmelisiniz!", g.Mode())
	case errors.Is(err, game.ErrNotInDictionary):
		status, code, message = http.StatusUnprocessableEntity, "not_in_dictionary", "Bu kelime sözlükte yok!"
	default:
		status, code, message = http.StatusInternalServerError, "internal", err.Error()
	}
	if s.Metrics != nil {
		s.Metrics.Guess(g.Mode(), code)
	}
	writeError(w, status, code, message)
}

// finish records a signed-in player's daily result, pushes it to the live feed
// and fills in rank and points.
func (s *Server) finish(r *http.Request, g *game.Session, out game.Outcome, res *guessRes) {
	me, ok := auth.FromContext(r.Context())
	if !ok || g.Practice() || g.UserID() == "" || g.UserID() != me.UserID {
		return
	}
	ctx := r.Context()
	logger := hlog.FromRequest(r).With().Str("gameId", g.ID()).Str("userId", me.UserID).Int("mode", g.Mode()).Logger()

	result := &daily.Result{
		UserID:   me.UserID,
		Mode:     g.Mode(),
		Date:     g.DateKey(),
		Won:      out.Won,
		Attempts: out.Attempts,
		TimeMs:   out.TimeMs,
	}
	// A second daily session for the same mode may have been started before
	// the first one finished; only the first finish counts.
	played, err := s.Results.AlreadyPlayed(ctx, me.UserID, g.Mode(), g.DateKey())
	if err != nil {
		logger.Error().Err(err).Msg("check already played")
		return
	}
	if played {
		err = daily.ErrAlreadyPlayed
	} else {
		err = s.Results.SaveResult(ctx, result)
	}
	switch {
	case errors.Is(err, daily.ErrAlreadyPlayed):
		logger.Warn().Msg("result for this day already recorded")
	case err != nil:
		logger.Error().Err(err).Msg("save result")
		return
	default:
		res.Recorded = true
		s.publish(ctx, realtime.Score{Username: me.Username, GameMode: g.Mode(), TimeMs: out.TimeMs, Won: out.Won})
	}

	rank, err := s.Scores.PlayerRank(ctx, g.Mode(), g.DateKey(), me.UserID)
	if err != nil {
		logger.Warn().Err(err).Msg("player rank")
		return
	}
	if rank > 0 {
		pts := scoring.CalculatePoints(rank, g.Mode(), out.Won)
		res.Rank, res.Points = rank, &pts
	}
	logger.Info().Bool("won", out.Won).Int("attempts", out.Attempts).Int64("timeMs", out.TimeMs).Int("rank", rank).Msg("game finished")
}

func (s *Server) publish(ctx context.Context, score realtime.Score) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, score); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("publish score")
	}
}

// ----------------------------------------------------------------------------
// session plumbing

// load restores the session named in the URL. Sessions bound to a player are
// only visible to that player.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	id := chi.URLParam(r, "id")
	snap, err := s.Sessions.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Oyun bulunamadı")
		return nil, false
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", id).Msg("load session")
		writeError(w, http.StatusInternalServerError, "store_error", "")
		return nil, false
	}
	if snap.UserID != "" {
		if me, ok := auth.FromContext(r.Context()); !ok || me.UserID != snap.UserID {
			writeError(w, http.StatusNotFound, "not_found", "Oyun bulunamadı")
			return nil, false
		}
	}
	return game.Restore(s.Dict, snap), true
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, g *game.Session) bool {
	if err := s.Sessions.Save(r.Context(), g.Snapshot()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", g.ID()).Msg("save session")
		writeError(w, http.StatusInternalServerError, "store_error", "")
		return false
	}
	return true
}
