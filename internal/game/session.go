// internal/game/session.go
//
// Game session: the turn-taking state machine for one player and one mode.
// Responsibilities:
//   - Pick the target word through the Dictionary on Initialize.
//   - Buffer letters (AddLetter/RemoveLetter) and validate + evaluate submissions.
//   - Track attempts, the timer and the terminal transitions (won/lost).
//
// Notes:
//   - A Session is owned by a single caller; it is not safe for concurrent use.
//   - Rejected calls never mutate state.
//   - maxAttempts is mode+1 (6 tries for 5 letters, 7 for 6, 8 for 7).

package game

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/addkelime/kelime-server/internal/words"
)

// Dictionary is what a Session needs from the word lists.
type Dictionary interface {
	IsValidWord(word string, mode int) bool
	DailyWord(mode int, dateKey string) string
}

// Session holds the state of a single game.
type Session struct {
	dict Dictionary
	now  func() time.Time

	id       string
	userID   string
	mode     int
	dateKey  string
	practice bool

	target      string
	guesses     []Guess
	current     []rune
	gameOver    bool
	won         bool
	maxAttempts int
	start, end  time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithNow replaces the time source used by the timer.
func WithNow(fn func() time.Time) Option {
	return func(s *Session) { s.now = fn }
}

// NewSession returns an uninitialised session bound to dict.
func NewSession(dict Dictionary, opts ...Option) *Session {
	s := &Session{dict: dict, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize starts a fresh daily game for mode on dateKey (empty means the
// dictionary's today). Unsupported modes fall back to 5 letters.
func (s *Session) Initialize(mode int, dateKey string) {
	mode = words.NormalizeMode(mode)
	s.reset(mode, s.dict.DailyWord(mode, dateKey))
	s.dateKey = dateKey
}

// InitializePractice starts a game with an explicit target that is not tied to a day.
func (s *Session) InitializePractice(mode int, target string) {
	mode = words.NormalizeMode(mode)
	s.reset(mode, words.Upper(target))
	s.practice = true
}

func (s *Session) reset(mode int, target string) {
	s.id = uuid.NewString()
	s.mode = mode
	s.target = target
	s.dateKey = ""
	s.practice = false
	s.guesses = nil
	s.current = nil
	s.gameOver = false
	s.won = false
	s.maxAttempts = mode + 1
	s.start, s.end = time.Time{}, time.Time{}
}

// StartTimer records the start time once.
func (s *Session) StartTimer() {
	if s.start.IsZero() {
		s.start = s.now()
	}
}

// AddLetter appends one letter, upper-cased with Turkish rules.
// It returns false without changing anything if the game is over, the buffer is full,
// or letter is not a single letter of the alphabet. The first accepted letter starts the timer.
func (s *Session) AddLetter(letter string) bool {
	if s.gameOver || len(s.current) >= s.mode {
		return false
	}
	up := words.Upper(letter)
	if utf8.RuneCountInString(up) != 1 || !words.IsTurkish(up) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(up)
	s.StartTimer()
	s.current = append(s.current, r)
	return true
}

// RemoveLetter drops the last buffered letter.
func (s *Session) RemoveLetter() bool {
	if s.gameOver || len(s.current) == 0 {
		return false
	}
	s.current = s.current[:len(s.current)-1]
	return true
}

// SubmitGuess validates and evaluates the buffered guess.
//
// Errors (the session is unchanged): ErrGameOver, ErrWrongLength, ErrNotInDictionary.
//
// Transitions, in order:
//   - guess equals the target: won, game over.
//   - attempts reached maxAttempts: lost, game over, target revealed.
//   - otherwise the buffer is cleared for the next attempt.
func (s *Session) SubmitGuess() (Outcome, error) {
	if s.gameOver {
		return Outcome{}, ErrGameOver
	}
	if len(s.current) != s.mode {
		return Outcome{}, fmt.Errorf("%w: need %d letters, have %d", ErrWrongLength, s.mode, len(s.current))
	}
	word := string(s.current)
	if !s.dict.IsValidWord(word, s.mode) {
		return Outcome{}, ErrNotInDictionary
	}

	res := Evaluate(word, s.target)
	s.guesses = append(s.guesses, Guess{Word: word, Result: res})

	if word == s.target {
		s.finish(true)
		return Outcome{Result: res, GameOver: true, Won: true, Attempts: len(s.guesses), TimeMs: s.ElapsedMs()}, nil
	}
	if len(s.guesses) >= s.maxAttempts {
		s.finish(false)
		return Outcome{
			Result:      res,
			GameOver:    true,
			Attempts:    len(s.guesses),
			TimeMs:      s.ElapsedMs(),
			CorrectWord: s.target,
		}, nil
	}
	s.current = nil
	return Outcome{Result: res}, nil
}

func (s *Session) finish(won bool) {
	s.gameOver = true
	s.won = won
	s.end = s.now()
}

// Elapsed is zero before the timer starts, then (end or now) - start.
func (s *Session) Elapsed() time.Duration {
	if s.start.IsZero() {
		return 0
	}
	end := s.end
	if end.IsZero() {
		end = s.now()
	}
	return end.Sub(s.start)
}

// ElapsedMs is Elapsed floored to whole milliseconds.
func (s *Session) ElapsedMs() int64 { return s.Elapsed().Milliseconds() }

// State reports the coarse state of the session.
func (s *Session) State() State {
	switch {
	case s.gameOver && s.won:
		return StateWon
	case s.gameOver:
		return StateLost
	case s.start.IsZero():
		return StateNotStarted
	default:
		return StateInProgress
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Mode() int            { return s.mode }
func (s *Session) DateKey() string      { return s.dateKey }
func (s *Session) Practice() bool       { return s.practice }
func (s *Session) IsGameOver() bool     { return s.gameOver }
func (s *Session) Won() bool            { return s.won }
func (s *Session) Attempts() int        { return len(s.guesses) }
func (s *Session) MaxAttempts() int     { return s.maxAttempts }
func (s *Session) CurrentGuess() string { return string(s.current) }

// UserID is the player the session belongs to, empty for anonymous play.
func (s *Session) UserID() string { return s.userID }

// SetUserID binds the session to a player.
func (s *Session) SetUserID(id string) { s.userID = id }

// TargetWord returns the answer once the game is over, "" before that.
func (s *Session) TargetWord() string {
	if !s.gameOver {
		return ""
	}
	return s.target
}

// Guesses returns a copy of the guess history.
func (s *Session) Guesses() []Guess {
	out := make([]Guess, len(s.guesses))
	copy(out, s.guesses)
	return out
}

// Keyboard derives the letter statuses from the guess history.
func (s *Session) Keyboard() map[string]Status { return DeriveKeyboard(s.guesses) }

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:           s.id,
		UserID:       s.userID,
		Mode:         s.mode,
		DateKey:      s.dateKey,
		Practice:     s.practice,
		TargetWord:   s.target,
		Guesses:      s.Guesses(),
		CurrentGuess: string(s.current),
		GameOver:     s.gameOver,
		Won:          s.won,
		MaxAttempts:  s.maxAttempts,
		StartTime:    s.start,
		EndTime:      s.end,
	}
}

// Restore rebuilds a session from a snapshot.
func Restore(dict Dictionary, snap Snapshot, opts ...Option) *Session {
	s := NewSession(dict, opts...)
	s.id = snap.ID
	s.userID = snap.UserID
	s.mode = words.NormalizeMode(snap.Mode)
	s.dateKey = snap.DateKey
	s.practice = snap.Practice
	s.target = snap.TargetWord
	s.guesses = append([]Guess(nil), snap.Guesses...)
	s.current = []rune(snap.CurrentGuess)
	s.gameOver = snap.GameOver
	s.won = snap.Won
	s.maxAttempts = snap.MaxAttempts
	if s.maxAttempts == 0 {
		s.maxAttempts = s.mode + 1
	}
	s.start, s.end = snap.StartTime, snap.EndTime
	return s
}

// FormatElapsed renders milliseconds as mm:ss.mmm.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	sec := ms / 1000
	return fmt.Sprintf("%02d:%02d.%03d", sec/60, sec%60, ms%1000)
}
