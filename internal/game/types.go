// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Status: per-letter result of a guess (correct/present/absent).
//   - Guess: one submitted word with its evaluation.
//   - State: coarse session state (not_started/in_progress/won/lost).
//   - Outcome: what a successful submission reports back.
//   - Snapshot: serialisable copy of a session, for the session stores.

package game

import (
	"errors"
	"time"
)

// Status represents the evaluation result for a single letter in a guess.
//   - "correct": letter is in the word at this position.
//   - "present": letter is in the word at another, not yet matched, position.
//   - "absent":  no unmatched occurrence of the letter is left in the word.
type Status string

const (
	StatusCorrect Status = "correct"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// rank orders statuses for the keyboard: correct > present > absent.
func (s Status) rank() int {
	switch s {
	case StatusCorrect:
		return 2
	case StatusPresent:
		return 1
	default:
		return 0
	}
}

// Result holds one Status per letter of a guess.
type Result []Status

// Guess is one recorded attempt.
type Guess struct {
	Word   string `json:"word"`
	Result Result `json:"result"`
}

// State is the coarse session state.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateLost       State = "lost"
)

// Over reports whether s is terminal.
func (s State) Over() bool { return s == StateWon || s == StateLost }

// Outcome is reported by a successful SubmitGuess.
// Attempts and TimeMs are only set when the game ended; CorrectWord only on a loss.
type Outcome struct {
	Result      Result `json:"result"`
	GameOver    bool   `json:"gameOver"`
	Won         bool   `json:"won"`
	Attempts    int    `json:"attempts,omitempty"`
	TimeMs      int64  `json:"timeMs,omitempty"`
	CorrectWord string `json:"correctWord,omitempty"`
}

// Rejections. None of them change the session.
var (
	ErrGameOver        = errors.New("game: game already over")
	ErrWrongLength     = errors.New("game: wrong length")
	ErrNotInDictionary = errors.New("game: not in dictionary")
)

// Snapshot is a plain copy of a session's state.
// It contains the target word and must not be sent to players as is.
type Snapshot struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	Mode         int       `json:"mode"`
	DateKey      string    `json:"dateKey,omitempty"`
	Practice     bool      `json:"practice,omitempty"`
	TargetWord   string    `json:"targetWord"`
	Guesses      []Guess   `json:"guesses"`
	CurrentGuess string    `json:"currentGuess"`
	GameOver     bool      `json:"gameOver"`
	Won          bool      `json:"won"`
	MaxAttempts  int       `json:"maxAttempts"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
}
